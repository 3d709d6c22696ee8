package ai

import "strings"

// DefaultTopic is used when no keyword in the message matches.
const DefaultTopic = "General Medicine"

type topicKeyword struct {
	keyword string
	topic   string
}

// Ordered so that the first matching keyword wins, deterministically.
var topicKeywords = []topicKeyword{
	{"cardiac", "Cardiology"},
	{"heart", "Cardiology"},
	{"respiratory", "Respiratory System"},
	{"lung", "Respiratory System"},
	{"brain", "Neurology"},
	{"nervous", "Neurology"},
	{"immune", "Immunology"},
	{"antibody", "Immunology"},
	{"muscle", "Musculoskeletal"},
	{"bone", "Musculoskeletal"},
	{"digestive", "Gastroenterology"},
	{"kidney", "Nephrology"},
	{"liver", "Hepatology"},
}

// InferTopic tags a message with a medical subject area via a fixed
// keyword lookup. Case-insensitive; first match wins.
func InferTopic(message string) string {
	lower := strings.ToLower(message)
	for _, tk := range topicKeywords {
		if strings.Contains(lower, tk.keyword) {
			return tk.topic
		}
	}
	return DefaultTopic
}

var followUpPhrases = []string{
	"would you like",
	"can you provide",
	"tell me more",
	"any specific",
	"which aspect",
	"?",
}

// AnalysisComplete reports whether a reply looks final rather than a
// request for more information. Substring check over free text; a
// best-effort signal, not a guarantee.
func AnalysisComplete(response string) bool {
	lower := strings.ToLower(response)
	for _, phrase := range followUpPhrases {
		if strings.Contains(lower, phrase) {
			return false
		}
	}
	return true
}
