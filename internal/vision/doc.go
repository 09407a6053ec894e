// Package vision talks to an OpenAI-compatible multimodal chat API to
// annotate photos: object labels, wildlife species, face counts, and
// accessibility captions. Requests attach the image as a base64 data URL and
// retry transient failures with capped exponential backoff.
package vision
