// Package tokens implements the local token-count approximation backing
// POST /v1/messages/count_tokens.
//
// Per the endpoint's contract, this estimate never calls an upstream
// provider — it is a character-based approximation over the decoded
// Anthropic content blocks (text, image, tool_use, tool_result), with a
// flat per-image and per-tool overhead standing in for content a character
// count can't see into.
//
// # Accuracy
//
// The character-per-token ratio is keyed by model family prefix:
//
//	claude-*  -> 3.5 chars/token
//	gpt-*/o1* -> 4.0 chars/token
//	gemini-*  -> 4.0 chars/token
//	otherwise -> 3.5 chars/token (default)
//
// # Usage
//
//	estimator := tokens.NewSimpleEstimator()
//	count, err := estimator.EstimateRequest(req)
package tokens
