// Package transcript turns the freeform "Speaker: text" transcript into
// chat turns for the transcript viewer.
package transcript

import (
	"strings"
	"unicode/utf8"

	"call-dashboard-go/internal/types"
)

// Parse splits the transcript into one message per non-blank line. Only the
// first colon separates speaker from message; a line without a colon becomes
// a speaker with an empty message rather than failing the parse.
func Parse(transcript string) []types.TranscriptMessage {
	out := []types.TranscriptMessage{}
	for _, line := range strings.Split(transcript, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		speaker, message, _ := strings.Cut(line, ":")
		speaker = strings.TrimSpace(speaker)
		out = append(out, types.TranscriptMessage{
			Index:   len(out),
			Speaker: speaker,
			Message: strings.TrimSpace(message),
			IsUser:  IsUserSpeaker(speaker),
		})
	}
	return out
}

// IsUserSpeaker reports whether a speaker label belongs to the caller side.
func IsUserSpeaker(speaker string) bool {
	s := strings.ToLower(speaker)
	return strings.Contains(s, "user") || strings.Contains(s, "caller")
}

// Stats are talk-share figures for one parsed transcript.
type Stats struct {
	UserTurns  int     `json:"userTurns"`
	AgentTurns int     `json:"agentTurns"`
	UserRatio  float64 `json:"userTalkRatio"`  // share of message characters, 0-1
	AgentRatio float64 `json:"agentTalkRatio"` // share of message characters, 0-1
}

// Summarize counts turns and character share per side.
func Summarize(msgs []types.TranscriptMessage) Stats {
	var st Stats
	var userChars, agentChars int
	for _, m := range msgs {
		n := utf8.RuneCountInString(m.Message)
		if m.IsUser {
			st.UserTurns++
			userChars += n
		} else {
			st.AgentTurns++
			agentChars += n
		}
	}
	if total := userChars + agentChars; total > 0 {
		st.UserRatio = float64(userChars) / float64(total)
		st.AgentRatio = float64(agentChars) / float64(total)
	}
	return st
}
