package study

// MaxAttempts is the number of failed attempts after which a card's answer
// is revealed.
const MaxAttempts = 3

// Card is the per-item presentation state. A new Card is created each time
// the sequencer yields an item.
type Card struct {
	Item   Item
	Detail *Detail
	Stage  Stage

	attemptCount int
	showAnswer   bool
	clicked      map[int64]bool
}

// NewCard creates a front-unrevealed card.
func NewCard(item Item, detail *Detail, stage Stage) *Card {
	return &Card{
		Item:    item,
		Detail:  detail,
		Stage:   stage,
		clicked: make(map[int64]bool),
	}
}

// AttemptCount returns the attempts made on the current front.
func (c *Card) AttemptCount() int {
	return c.attemptCount
}

// ShowAnswer reports whether the card is on its back side.
func (c *Card) ShowAnswer() bool {
	return c.showAnswer
}

// Clicked reports whether option id was picked on the current front.
func (c *Card) Clicked(id int64) bool {
	return c.clicked[id]
}

// Pass records a correct attempt and reveals the back.
func (c *Card) Pass() {
	c.attemptCount++
	c.showAnswer = true
	c.clearClicked()
}

// Fail records a wrong pick. It returns true when the attempt limit forced
// the answer to be revealed; the attempt count is then reset to zero.
func (c *Card) Fail(optionID int64) (revealed bool) {
	c.attemptCount++
	c.clicked[optionID] = true
	if c.attemptCount < MaxAttempts {
		return false
	}
	c.showAnswer = true
	c.attemptCount = 0
	c.clearClicked()
	return true
}

// Flip turns a revealed card back to its front.
func (c *Card) Flip() {
	c.showAnswer = false
	c.clearClicked()
}

func (c *Card) clearClicked() {
	clear(c.clicked)
}

// ShowWord reports whether the headword is visible.
func (c *Card) ShowWord() bool {
	return c.Stage.showsWord()
}

// ShowSentence reports whether the example sentence is visible.
func (c *Card) ShowSentence() bool {
	switch c.Stage {
	case StageRecognition:
		return true
	case StageUnderstanding:
		return c.attemptCount == 1
	case StageMastery:
		return c.attemptCount == 2
	}
	return false
}

// ShowTranslation reports whether the native-language translation is visible.
func (c *Card) ShowTranslation() bool {
	return c.Stage == StageRecognition && c.attemptCount == 1
}

// ShowEnglishTranslation reports whether the English gloss is visible.
func (c *Card) ShowEnglishTranslation() bool {
	return c.Stage.showsWord() && c.attemptCount == 2
}

// ShowOptionWord reports whether option id shows its word.
func (c *Card) ShowOptionWord(id int64) bool {
	if c.Stage == StageMastery {
		return true
	}
	return c.Stage.showsWord() && c.clicked[id]
}

// ShowOptionTranslation reports whether option id shows its translation.
func (c *Card) ShowOptionTranslation(id int64) bool {
	if c.Stage.showsWord() {
		return true
	}
	return c.Stage == StageMastery && c.clicked[id]
}
