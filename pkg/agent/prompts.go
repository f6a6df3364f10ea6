package agent

import (
	"fmt"
	"strings"

	"github.com/yanlabs/farsight/pkg/timeslot"
)

// Prompt assembly for the analysis narratives. The voice is the product's
// "AI wingman" persona; the data sections are plain text blocks so the model
// has nothing to hallucinate about.

const analystVoice = "You are YAN, an AI wingman for Farcaster creators. " +
	"Be warm and concrete, ground every claim in the provided data, and never invent numbers."

func optimalTimePrompt(fid string, castCount int, peakHours []int, peakHourCount int, peakDays []int, peakDayCount int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", analystVoice)
	fmt.Fprintf(&b, "Write a short 'Your Optimal Casting Times' summary for user FID %s.\n", fid)
	fmt.Fprintf(&b, "Analyzed casts: %d\n", castCount)
	fmt.Fprintf(&b, "Peak UTC hours (%d casts each): %s\n", peakHourCount, hourList(peakHours))
	fmt.Fprintf(&b, "Peak weekdays (%d casts each): %s\n", peakDayCount, dayList(peakDays))
	b.WriteString("\nName the sweet spot (best day and hour, UTC), mention every tied peak, " +
		"and close with a one-line disclaimer about experimenting.")
	return b.String()
}

func topFansPrompt(fid string, fans []Fan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", analystVoice)
	fmt.Fprintf(&b, "Write a 'Your Top Fans' leaderboard for user FID %s from this follower data:\n", fid)
	for i, fan := range fans {
		fmt.Fprintf(&b, "%d. @%s (%d followers)\n", i+1, fan.Username, fan.FollowerCount)
	}
	b.WriteString("\nList them in order with their reach, then end with one sentence encouraging engagement.")
	return b.String()
}

func topicPrompt(contextText, profileText string) string {
	var b strings.Builder
	b.WriteString("Extract a short topic phrase (3-6 words, no punctuation) that best captures " +
		"what this conversation is about. Reply with the phrase only.\n\n")
	fmt.Fprintf(&b, "Conversation context:\n%s\n", contextText)
	if profileText != "" {
		fmt.Fprintf(&b, "\nAuthor profile:\n%s\n", profileText)
	}
	return b.String()
}

func replySummaryPrompt(castText string, replies []string) string {
	var b strings.Builder
	b.WriteString("Summarize in 3-4 sentences what the community is saying in these replies. " +
		"Mention the dominant sentiment.\n\n")
	fmt.Fprintf(&b, "Original cast: %s\n\nReplies:\n", castText)
	for _, reply := range replies {
		fmt.Fprintf(&b, "- %s\n", reply)
	}
	return b.String()
}

func trendingPrompt(catalyst *Catalyst, topic, localContext, searchContext, window string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", analystVoice)
	b.WriteString("Write a 'Trending on Farcaster' briefing about the conversation below. " +
		"Cover: a brief summary, the 'Why Now?' context, and one actionable insight on how to engage.\n\n")
	fmt.Fprintf(&b, "Catalyst cast by @%s: %s\n\n", catalyst.AuthorUsername, catalyst.Text)
	fmt.Fprintf(&b, "Topic: %s\n\n", topic)
	fmt.Fprintf(&b, "Community discussion:\n%s\n\n", localContext)
	fmt.Fprintf(&b, "Wider context from the %s:\n%s\n", window, searchContext)
	return b.String()
}

func personaPrompt(fid, username, bio, websiteContext string, castTexts []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", analystVoice)
	fmt.Fprintf(&b, "Write a warm persona summary for @%s (FID %s): highlight 2-3 key interests "+
		"and their communication style, ending with an enthusiastic call to action.\n\n", username, fid)
	if bio != "" {
		fmt.Fprintf(&b, "Bio: %s\n\n", bio)
	}
	if websiteContext != "" {
		fmt.Fprintf(&b, "From their website:\n%s\n\n", websiteContext)
	}
	b.WriteString("Recent casts:\n")
	for _, text := range castTexts {
		fmt.Fprintf(&b, "- %s\n", text)
	}
	return b.String()
}

func weeklyReportPrompt(fid string, fans []Fan, catalyst *Catalyst, topic, searchContext string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", analystVoice)
	fmt.Fprintf(&b, "Write a 'Your Weekly Farcaster Report' for user FID %s. "+
		"Group the new power followers, provide one actionable tip, and list the trending topic "+
		"as a conversation starter.\n\n", fid)
	b.WriteString("New power followers:\n")
	for _, fan := range fans {
		fmt.Fprintf(&b, "- @%s (%d followers)\n", fan.Username, fan.FollowerCount)
	}
	if catalyst != nil {
		fmt.Fprintf(&b, "\nTrending conversation (topic: %s): %s\n", topic, catalyst.Text)
	}
	fmt.Fprintf(&b, "\nContext from the last 7 days:\n%s\n", searchContext)
	return b.String()
}

func castIdeasPrompt(fid, topic, searchContext string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", analystVoice)
	fmt.Fprintf(&b, "Suggest exactly 5 cast ideas for user FID %s around the topic %q. "+
		"Format as a numbered list, one idea per line, no intro or outro text.\n\n", fid, topic)
	fmt.Fprintf(&b, "Recent context:\n%s\n", searchContext)
	return b.String()
}

func hourList(hours []int) string {
	if len(hours) == 0 {
		return "none"
	}
	labels := make([]string, 0, len(hours))
	for _, h := range hours {
		labels = append(labels, timeslot.HourLabel(h))
	}
	return strings.Join(labels, ", ")
}

func dayList(days []int) string {
	if len(days) == 0 {
		return "none"
	}
	labels := make([]string, 0, len(days))
	for _, d := range days {
		labels = append(labels, timeslot.WeekdayLabel(d))
	}
	return strings.Join(labels, ", ")
}
