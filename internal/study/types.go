package study

import "errors"

// ErrNoItems is returned when a session is created without anything to study.
var ErrNoItems = errors.New("no items to study")

// Item is the minimal reference to a vocabulary unit held by the stage queues.
type Item struct {
	TopicID int64
	Word    string
}

// Detail is the fully resolved display data for an item.
type Detail struct {
	TopicID             int64
	Word                string
	Phonetic            string
	Translation         string
	EnglishTranslation  string
	Sentence            string
	SentenceTranslation string
	AudioURL            string

	// OptionIDs are the topic ids used as distractors for this item.
	OptionIDs []int64
}

// stubDetail builds a placeholder detail when resolution fails.
func stubDetail(item Item) *Detail {
	return &Detail{TopicID: item.TopicID, Word: item.Word}
}

// Option is one multiple-choice answer shown for an item.
type Option struct {
	ID          int64
	Word        string
	Translation string
	Correct     bool
}

// Brief is a short summary of an item recorded in session statistics.
type Brief struct {
	TopicID     int64  `json:"topic_id"`
	Word        string `json:"word"`
	Translation string `json:"translation,omitempty"`
}
