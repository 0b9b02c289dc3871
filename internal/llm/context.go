package llm

import "context"

// Purposes label why a request was made. They show up in recorded events
// and in `wordiz llm list --purpose`.
const (
	// PurposeEnrich fills in a word the learner is studying.
	PurposeEnrich = "word-enrich"
	// PurposeBookEnrich fills in words in bulk for a whole book.
	PurposeBookEnrich = "book-enrich"
	// PurposeCheck is a one-off request to verify the provider setup.
	PurposeCheck = "provider-check"
)

type contextKey int

const (
	purposeKey contextKey = iota
	wordKey
	attemptKey
)

// WithPurpose labels requests made with ctx.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom returns the purpose label of ctx, or "".
func PurposeFrom(ctx context.Context) string {
	v, _ := ctx.Value(purposeKey).(string)
	return v
}

// WithWord records the vocabulary word a request is about.
func WithWord(ctx context.Context, word string) context.Context {
	return context.WithValue(ctx, wordKey, word)
}

// WordFrom returns the word attached to ctx, or "".
func WordFrom(ctx context.Context) string {
	v, _ := ctx.Value(wordKey).(string)
	return v
}

func withAttempt(ctx context.Context, n int) context.Context {
	return context.WithValue(ctx, attemptKey, n)
}

// attemptFrom returns the 1-based attempt number set by the retry
// decorator, or 1 outside of it.
func attemptFrom(ctx context.Context) int {
	if v, ok := ctx.Value(attemptKey).(int); ok {
		return v
	}
	return 1
}
