// Package planner turns a phase's command templates into a pipeline: every
// step preceded by a banner, all chained so the first failure stops the
// rest.
package planner

import (
	"strings"
	"unicode/utf8"

	"github.com/harshul/builder/internal/vars"
)

// MaxTitle is the longest step text shown in a banner.
const MaxTitle = 110

// Stage is one planned step.
type Stage struct {
	// Title is the step text as shown in the banner, possibly truncated.
	Title string
	// Banner is the shell command printing the banner.
	Banner string
	// Command is the substituted step.
	Command string
}

// Pipeline is the ordered list of stages of a phase.
type Pipeline struct {
	Stages []Stage
}

// Empty reports whether there is nothing to execute.
func (p Pipeline) Empty() bool {
	return len(p.Stages) == 0
}

// Commands returns the substituted steps without banners.
func (p Pipeline) Commands() []string {
	out := make([]string, 0, len(p.Stages))
	for _, s := range p.Stages {
		out = append(out, s.Command)
	}
	return out
}

// String serializes the pipeline into a single shell command:
// banner && step && banner && step ...
func (p Pipeline) String() string {
	parts := make([]string, 0, len(p.Stages)*4)
	for _, s := range p.Stages {
		if len(parts) > 0 {
			parts = append(parts, "&&")
		}
		parts = append(parts, s.Banner, "&&", s.Command)
	}
	return strings.Join(parts, " ")
}

// Plan substitutes variables into every step and pairs it with its banner.
func Plan(steps []string, computed, user vars.Map) Pipeline {
	var p Pipeline
	for _, step := range steps {
		cmd := vars.Resolve(step, computed, user)
		title := Truncate(cmd)
		p.Stages = append(p.Stages, Stage{
			Title:   title,
			Banner:  Banner(title),
			Command: cmd,
		})
	}
	return p
}

// Truncate shortens text to MaxTitle characters.
func Truncate(text string) string {
	if utf8.RuneCountInString(text) <= MaxTitle {
		return text
	}
	return string([]rune(text)[:MaxTitle])
}

// Banner returns an echo command printing text framed by # lines:
//
//	<blank>
//	##############
//	### <text> ###
//	##############
//	<blank>
//
// The \n sequences are left for echo -e to interpret.
func Banner(text string) string {
	text = Truncate(text)
	sep := strings.Repeat("#", 8+utf8.RuneCountInString(text))
	return `echo -e '\n` + sep + `\n### ` + text + ` ###\n` + sep + `\n'`
}
