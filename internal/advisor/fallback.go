package advisor

import "arthasync/internal/core"

type message struct{ en, bn string }

var (
	msgDisabled = message{
		en: "AI insights disabled (API key missing).",
		bn: "AI অন্তর্দৃষ্টি নিষ্ক্রিয় (API কী নেই)।",
	}
	msgEmpty = message{
		en: "Could not generate advice.",
		bn: "উপদেশ তৈরি করা যায়নি।",
	}
	msgUnavailable = message{
		en: "Financial insights unavailable right now.",
		bn: "আর্থিক অন্তর্দৃষ্টি এই মুহূর্তে উপলব্ধ নয়।",
	}
	msgPlaceholder = message{
		en: "Start adding transactions to get personalized financial advice!",
		bn: "ব্যক্তিগত আর্থিক পরামর্শ পেতে লেনদেন যোগ করা শুরু করুন!",
	}
)

func (m message) in(lang core.Language) string {
	if lang == core.LangBengali {
		return m.bn
	}
	return m.en
}

// DisabledMessage is returned when no provider is configured.
func DisabledMessage(lang core.Language) string { return msgDisabled.in(lang) }

// EmptyMessage is returned when the provider answers with no text.
func EmptyMessage(lang core.Language) string { return msgEmpty.in(lang) }

// UnavailableMessage is returned when the provider call fails.
func UnavailableMessage(lang core.Language) string { return msgUnavailable.in(lang) }

// PlaceholderMessage is shown before any transaction exists.
func PlaceholderMessage(lang core.Language) string { return msgPlaceholder.in(lang) }
