// Package gemini generates the commentary script by sending a summary of the
// extracted features to the Gemini generateContent API.
//
// The model returns one JSON object with two keys: commentary_data, an array
// of {time, commentary} entries that become scheduler events, and
// report_narrative, a paragraph used verbatim in the analysis report. The
// client tolerates code-fenced payloads and retries transient HTTP failures
// with exponential backoff.
package gemini
