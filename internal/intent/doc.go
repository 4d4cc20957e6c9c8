// Package intent classifies recognized utterances into the closed set of
// confirmation intents.
//
// Classification runs in three steps over the candidates returned by the
// recognizer, kept in their best-first order:
//
//  1. Phrase pass: the first candidate containing an affirmative keyword wins.
//  2. Token pass: candidates are split into tokens of at least three runes and
//     a token matches when it is a substring of a single-word keyword or the
//     keyword is a substring of it. This catches partial or garbled words.
//  3. Negation pass: an affirmative match is flipped to negative when a
//     candidate pairs a negation word with a negating pattern ("not okay",
//     "theek nahi"), or mentions a distress term ("help", "bachao").
//
// Keywords shorter than three runes ("ok", "ha", "ho") only ever match whole
// tokens. Classify is a pure function of its input.
package intent
