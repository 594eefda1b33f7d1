package extract

import "regexp"

// fenceFix pairs a pattern matching a code fence with missing context and
// its language-hinted replacement.
type fenceFix struct {
	re   *regexp.Regexp
	repl string
}

var emptyFenceRe = regexp.MustCompile("```\\s*```")

// fenceFixes adds language hints to code fences whose first token betrays
// the language.
var fenceFixes = []fenceFix{
	{regexp.MustCompile("(?i)```\\s*function"), "```javascript\nfunction"},
	{regexp.MustCompile("(?i)```\\s*def\\s"), "```python\ndef "},
	{regexp.MustCompile("(?i)```\\s*import"), "```python\nimport"},
	{regexp.MustCompile("(?i)```\\s*class\\s"), "```python\nclass "},
	{regexp.MustCompile("(?i)```\\s*(public|private)\\s"), "```java\n$1 "},
	{regexp.MustCompile("(?i)```\\s*<\\?php"), "```php\n<?php"},
	{regexp.MustCompile("(?i)```\\s*package\\s"), "```java\npackage "},
	{regexp.MustCompile("(?i)```\\s*#include"), "```cpp\n#include"},
	{regexp.MustCompile("(?i)```\\s*using namespace"), "```cpp\nusing namespace"},
	{regexp.MustCompile("(?i)```\\s*(const\\s\\w+\\s=)"), "```javascript\n$1"},
	{regexp.MustCompile("(?i)```\\s*(var\\s\\w+\\s=)"), "```javascript\n$1"},
	{regexp.MustCompile("(?i)```\\s*(let\\s\\w+\\s=)"), "```javascript\n$1"},
	{regexp.MustCompile("(?i)```\\s*SELECT\\s"), "```sql\nSELECT "},
	{regexp.MustCompile("(?i)```\\s*<!DOCTYPE"), "```html\n<!DOCTYPE"},
	{regexp.MustCompile("(?i)```\\s*<html"), "```html\n<html"},
	{regexp.MustCompile("(?i)```\\s*@"), "```java\n@"},
	{regexp.MustCompile("(?i)```\\s*---"), "```yaml\n---"},
	{regexp.MustCompile("(?i)```\\s*apiVersion"), "```yaml\napiVersion"},
	{regexp.MustCompile("(?i)```\\s*<\\?xml"), "```xml\n<?xml"},
	{regexp.MustCompile("```\\s*/\\*\\*"), "```java\n/**"},
	{regexp.MustCompile("```\\s*/\\*"), "```java\n/*"},
	{regexp.MustCompile("```\\s*#"), "```python\n#"},
}

var (
	jiraRefRe      = regexp.MustCompile(`JIRA:\s*([A-Z]+-\d+)`)
	macroRemnantRe = regexp.MustCompile(`\{[a-zA-Z]+(?::[a-zA-Z]+)?\}.*?\{[a-zA-Z]+\}`)
	doubleDashRe   = regexp.MustCompile(`(\w)--(\w)`)
	bulletListRe   = regexp.MustCompile(`\n\s*-\s+`)
	orderedListRe  = regexp.MustCompile(`\n\s*(\d+)\.\s+`)
	h1SpacingRe    = regexp.MustCompile(`([^#])\n#\s`)
	h2SpacingRe    = regexp.MustCompile(`([^#])\n##\s`)
	h3SpacingRe    = regexp.MustCompile(`([^#])\n###\s`)
	blankRunsRe    = regexp.MustCompile(`\n{3,}`)
	sectionBreakRe = regexp.MustCompile(`(# .+)\n([^\n#])`)
)

// PostProcess cleans up the extracted text: it removes empty code fences,
// adds language hints, normalises Confluence artefacts, and tidies lists,
// headings and blank runs.
func PostProcess(text string) string {
	text = emptyFenceRe.ReplaceAllString(text, "")

	for _, f := range fenceFixes {
		text = f.re.ReplaceAllString(text, f.repl)
	}

	text = jiraRefRe.ReplaceAllString(text, "JIRA: [$1]")
	text = macroRemnantRe.ReplaceAllString(text, "")
	text = doubleDashRe.ReplaceAllString(text, "$1—$2")

	text = bulletListRe.ReplaceAllString(text, "\n- ")
	text = orderedListRe.ReplaceAllString(text, "\n$1. ")

	text = h1SpacingRe.ReplaceAllString(text, "$1\n\n# ")
	text = h2SpacingRe.ReplaceAllString(text, "$1\n\n## ")
	text = h3SpacingRe.ReplaceAllString(text, "$1\n\n### ")

	text = blankRunsRe.ReplaceAllString(text, "\n\n")
	text = sectionBreakRe.ReplaceAllString(text, "$1\n\n$2")

	return text
}
