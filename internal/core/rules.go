package core

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// priorityKeywords are the fixed subject keyword buckets used by the
// escalation stage. Matching is case-insensitive against the subject.
var priorityKeywords = []struct {
	priority Priority
	keywords []string
}{
	{PriorityUrgent, []string{"urgent", "asap", "immediate", "critical", "emergency"}},
	{PriorityHigh, []string{"important", "priority", "deadline", "today"}},
	{PriorityMedium, []string{"please review", "feedback", "update"}},
	{PriorityLow, []string{"fyi", "newsletter", "notification"}},
}

// RuleEngine deterministically overrides or escalates a raw
// classification using per-user preferences. Stages run in a fixed
// order and later stages overwrite earlier ones (last-write-wins):
//
//  1. deny-list: sender on the deny-list forces priority low
//  2. allow-list: sender on the allow-list forces priority high, so a
//     sender on both lists ends up high (the allow-list wins)
//  3. custom rules: every matching rule applies in list order, so the
//     later of two matching rules wins
//  4. keyword escalation: subject keywords can only raise priority,
//     never lower it
//
// A custom rule that declares no conditions matches every message.
// A custom rule with a malformed sender pattern never matches; the
// remaining rules still evaluate.
type RuleEngine struct {
	logger *zap.Logger
}

// NewRuleEngine creates a new rule engine
func NewRuleEngine(logger *zap.Logger) *RuleEngine {
	return &RuleEngine{logger: logger}
}

// Apply runs the override stages over the classification and returns
// the (mutated) classification. Preferences are read-only.
func (e *RuleEngine) Apply(msg *Message, cls *Classification, prefs *Preferences) *Classification {
	if cls == nil {
		cls = FallbackClassification("no upstream classification available")
	}
	if prefs == nil {
		prefs = &Preferences{}
	}

	sender := normalizeSender(msg.SenderEmail)

	// Stage 1: deny-list
	if containsSender(prefs.DenySenders, sender) {
		cls.Priority = PriorityLow
		cls.Reasoning = fmt.Sprintf("Sender %s is deny-listed; priority forced to low", msg.SenderEmail)
		e.logger.Debug("Deny-list rule fired", zap.String("sender", sender))
	}

	// Stage 2: allow-list. Runs after the deny-list so a sender on both
	// lists ends up high.
	if containsSender(prefs.AllowSenders, sender) {
		cls.Priority = PriorityHigh
		cls.Reasoning = fmt.Sprintf("Sender %s is allow-listed; priority forced to high", msg.SenderEmail)
		e.logger.Debug("Allow-list rule fired", zap.String("sender", sender))
	}

	// Stage 3: custom rules, in order, no short-circuit
	for i, rule := range prefs.Rules {
		if !e.ruleMatches(&rule, msg) {
			continue
		}
		cls.Priority = NormalizePriority(string(rule.Priority))
		reason := fmt.Sprintf("Custom rule %d set priority to %s", i+1, cls.Priority)
		if rule.Category != "" {
			cls.Category = NormalizeCategory(string(rule.Category))
			reason += fmt.Sprintf(" and category to %s", cls.Category)
		}
		cls.Reasoning = reason
		e.logger.Debug("Custom rule fired",
			zap.Int("rule", i+1),
			zap.String("priority", string(cls.Priority)))
	}

	// Stage 4: keyword escalation, escalate-only
	subjectLower := strings.ToLower(msg.Subject)
	for _, bucket := range priorityKeywords {
		if !containsAny(subjectLower, bucket.keywords) {
			continue
		}
		if bucket.priority.Level() > cls.Priority.Level() {
			cls.Priority = bucket.priority
			cls.Reasoning = fmt.Sprintf("Subject keyword escalated priority to %s", bucket.priority)
			e.logger.Debug("Keyword escalation fired",
				zap.String("priority", string(bucket.priority)))
		}
	}

	cls.Normalize()
	return cls
}

// ruleMatches checks every condition the rule declares. A malformed
// sender pattern counts as a non-match rather than an error.
func (e *RuleEngine) ruleMatches(rule *CustomRule, msg *Message) bool {
	if rule.SenderPattern != "" {
		re, err := regexp.Compile(rule.SenderPattern)
		if err != nil {
			e.logger.Warn("Skipping rule with malformed sender pattern",
				zap.String("pattern", rule.SenderPattern),
				zap.Error(err))
			return false
		}
		if !re.MatchString(msg.SenderEmail) {
			return false
		}
	}

	if rule.SubjectContains != "" {
		if !strings.Contains(strings.ToLower(msg.Subject), strings.ToLower(rule.SubjectContains)) {
			return false
		}
	}

	return true
}

func normalizeSender(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

func containsSender(list []string, sender string) bool {
	for _, s := range list {
		if normalizeSender(s) == sender {
			return true
		}
	}
	return false
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
