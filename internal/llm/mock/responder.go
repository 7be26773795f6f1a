package mock

import (
	"fmt"
	"strings"
	"time"
)

type rule struct {
	match func(lower string) bool
	reply func(now time.Time) string
}

func contains(word string) func(string) bool {
	return func(lower string) bool { return strings.Contains(lower, word) }
}

func fixed(text string) func(time.Time) string {
	return func(time.Time) string { return text }
}

// Rules are checked in order and the first match wins.
var baseRules = []rule{
	{
		match: func(lower string) bool { return strings.Contains(lower, "hello") || strings.Contains(lower, "hi") },
		reply: fixed("Hello! I'm a simple AI assistant. How can I help you today?"),
	},
	{match: contains("help"), reply: fixed("I'm here to help! Please let me know what you need assistance with.")},
	{match: contains("thank"), reply: fixed("You're welcome! Is there anything else I can help with?")},
	{match: contains("weather"), reply: fixed("I don't have access to real-time weather data, but I hope it's nice where you are!")},
	{
		match: contains("time"),
		reply: func(now time.Time) string { return fmt.Sprintf("The current time is %s.", now.Format("3:04:05 PM")) },
	},
	{
		match: contains("date"),
		reply: func(now time.Time) string { return fmt.Sprintf("Today's date is %s.", now.Format("1/2/2006")) },
	},
}

var richRules = []rule{
	{match: contains("portfolio"), reply: fixed("I can help you create a portfolio website! A good portfolio should include a hero section, about me, skills, projects, and contact sections. Would you like me to elaborate on any of these?")},
	{match: contains("ecommerce"), reply: fixed("For an e-commerce website, you'll need product listings, shopping cart functionality, and a checkout process. I can help you design a modern, user-friendly interface.")},
	{match: contains("blog"), reply: fixed("A tech blog should have a clean layout with article listings, categories, and search functionality. Dark mode toggle and social sharing are nice additions too.")},
	{match: contains("saas"), reply: fixed("A SaaS landing page needs a compelling hero section, features showcase, pricing plans, testimonials, and a clear call-to-action. Let me know if you need help with any specific section.")},
}

const (
	richEcho = "I understand you're asking about: %q. This is a simple response. " +
		"For more advanced AI capabilities, configure an API key for a provider such as Claude, Gemini, or Groq."
	plainEcho = "I understand you said: %q. This is a simple response from a free API. " +
		"For more advanced AI capabilities, configure an API key for a provider such as Claude, Gemini, or Groq."
)

// Responder produces canned replies without any outbound call.
type Responder struct {
	rules []rule
	echo  string
	now   func() time.Time
}

// NewResponder builds a responder. Rich adds the site-building topics.
// A nil clock means time.Now.
func NewResponder(rich bool, now func() time.Time) *Responder {
	if now == nil {
		now = time.Now
	}
	rules := append([]rule(nil), baseRules...)
	echo := plainEcho
	if rich {
		rules = append(rules, richRules...)
		echo = richEcho
	}
	return &Responder{rules: rules, echo: echo, now: now}
}

func (r *Responder) Respond(message string) string {
	lower := strings.ToLower(message)
	for _, rl := range r.rules {
		if rl.match(lower) {
			return rl.reply(r.now())
		}
	}
	return fmt.Sprintf(r.echo, message)
}
