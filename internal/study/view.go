package study

// View is an immutable snapshot of a session handed to listeners.
type View struct {
	// Card is nil before Start and after completion.
	Card *CardView

	// Options are empty until the option fetch for the current item lands.
	Options []OptionView

	Progress  int
	Completed bool

	// Failures is the session-wide fail count of the current item.
	Failures int
}

// CardView carries the current card's detail and its visibility flags.
type CardView struct {
	Item         Item
	Detail       Detail
	Stage        Stage
	AttemptCount int
	ShowAnswer   bool

	ShowWord               bool
	ShowSentence           bool
	ShowTranslation        bool
	ShowEnglishTranslation bool
}

// OptionView is an option with its per-card visibility.
type OptionView struct {
	Option
	Clicked         bool
	ShowWord        bool
	ShowTranslation bool
}

func newCardView(c *Card) *CardView {
	v := &CardView{
		Item:                   c.Item,
		Stage:                  c.Stage,
		AttemptCount:           c.AttemptCount(),
		ShowAnswer:             c.ShowAnswer(),
		ShowWord:               c.ShowWord(),
		ShowSentence:           c.ShowSentence(),
		ShowTranslation:        c.ShowTranslation(),
		ShowEnglishTranslation: c.ShowEnglishTranslation(),
	}
	if c.Detail != nil {
		v.Detail = *c.Detail
	}
	return v
}

func newOptionViews(c *Card, opts []Option) []OptionView {
	out := make([]OptionView, len(opts))
	for i, o := range opts {
		out[i] = OptionView{
			Option:          o,
			Clicked:         c.Clicked(o.ID),
			ShowWord:        c.ShowOptionWord(o.ID),
			ShowTranslation: c.ShowOptionTranslation(o.ID),
		}
	}
	return out
}
