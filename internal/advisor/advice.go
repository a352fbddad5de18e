package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hyperifyio/dataminer/internal/result"
)

// ProcessingSuggestions returns Markdown advice on cleaning, transforming and
// mining the data.
func (a *Advisor) ProcessingSuggestions(ctx context.Context, r result.Result) string {
	prompt := `You are a data science expert helping with web scraping and data extraction.

Analyze this data sample and provide specific suggestions for cleaning and processing it:

` + sample(r) + `

Provide recommendations for:
1. Data cleaning (handling missing values, duplicates, etc.)
2. Data transformation (type conversions, normalization, etc.)
3. Feature extraction (what insights could be derived)
4. Potential issues to watch out for

Format your response as:
- Overview: [Brief assessment of the data quality and structure]
- Cleaning Recommendations: [Bullet points]
- Transformation Recommendations: [Bullet points]
- Feature Extraction Ideas: [Bullet points]
- Potential Issues: [Bullet points]`
	out, err := a.ask(ctx, prompt, false, 1000)
	if err != nil || out == "" {
		logFallback("processing", err)
		return fallbackProcessing(r)
	}
	return out
}

func fallbackProcessing(r result.Result) string {
	var b strings.Builder
	if isTable(r) {
		fmt.Fprintf(&b, "# Data Processing Suggestions\n\n## Overview\nThe data is tabular with %d rows and %d columns.\n\n", r.Table.Len(), len(r.Table.Columns))
		b.WriteString("## Cleaning Recommendations\n")
		b.WriteString(bullets("Check for and remove duplicate rows", "Handle missing values in the dataset", "Standardize text fields (lowercase, remove special characters)"))
		b.WriteString("\n## Transformation Recommendations\n")
		b.WriteString(bullets("Convert date and time columns to a datetime type", "Extract numerical values from text where applicable", "Normalize numerical columns if needed"))
		b.WriteString("\n## Feature Extraction Ideas\n")
		b.WriteString(bullets("Calculate text length for content columns", "Extract entities or keywords from text fields", "Create categorical variables from text data"))
		b.WriteString("\n## Potential Issues\n")
		b.WriteString(bullets("Data might contain inconsistent formatting", "Text fields may require special handling for analysis", "Watch for outliers in numerical columns"))
		return b.String()
	}
	text := r.AsTable().Rows[0].String(result.ContentColumn)
	if r.IsPlaceholder() {
		text = r.Message()
	}
	fmt.Fprintf(&b, "# Text Processing Suggestions\n\n## Overview\nThe data is text of about %d characters.\n\n", len(text))
	b.WriteString("## Cleaning Recommendations\n")
	b.WriteString(bullets("Remove HTML tags if present", "Remove extra whitespace and special characters", "Fix encoding issues if any are detected"))
	b.WriteString("\n## Transformation Recommendations\n")
	b.WriteString(bullets("Convert to lowercase for consistency", "Remove stopwords for better analysis", "Consider stemming or lemmatization"))
	b.WriteString("\n## Feature Extraction Ideas\n")
	b.WriteString(bullets("Extract key phrases or entities", "Perform sentiment analysis", "Extract dates, numbers, or other structured data"))
	b.WriteString("\n## Potential Issues\n")
	b.WriteString(bullets("Text may contain mixed content or formats", "Special characters might need custom handling", "Long text might need chunking for processing"))
	return b.String()
}

// CleaningOp is one recommended cleaning action.
type CleaningOp struct {
	Column         string `json:"column"`
	Issue          string `json:"issue"`
	Recommendation string `json:"recommendation"`
	Priority       string `json:"priority"`
}

// CleaningPlan is the structured answer of CleaningSuggestions.
type CleaningPlan struct {
	Overview   string       `json:"overview"`
	Operations []CleaningOp `json:"operations"`
}

// CleaningSuggestions asks for per-column cleaning operations.
func (a *Advisor) CleaningSuggestions(ctx context.Context, r result.Result) CleaningPlan {
	var stats strings.Builder
	if isTable(r) {
		p := profileOf(r.Table)
		stats.WriteString("Columns:\n")
		for _, c := range r.Table.Columns {
			fmt.Fprintf(&stats, "- %s: missing %d\n", c, p.Missing[c])
		}
		fmt.Fprintf(&stats, "\nDuplicate rows: %d\n", p.Duplicates)
	}
	prompt := `You are a data cleaning expert.

Analyze this dataset and provide specific cleaning operations needed:

Data statistics:
` + stats.String() + `
Data sample:
` + sample(r) + `

Format your response as JSON with these fields:
- "overview": Brief assessment of overall data quality
- "operations": Array of operations with "column" (or "all" for row operations), "issue", "recommendation", "priority" (High/Medium/Low)`
	var plan CleaningPlan
	if err := a.askJSON(ctx, prompt, 1500, &plan); err != nil {
		logFallback("cleaning", err)
		return fallbackCleaning(r)
	}
	return plan
}

func fallbackCleaning(r result.Result) CleaningPlan {
	if !isTable(r) {
		return CleaningPlan{
			Overview: "The data is not in tabular format. Consider converting it to a structured format.",
			Operations: []CleaningOp{{
				Column:         "all",
				Issue:          "Unstructured text data",
				Recommendation: "Apply text cleaning (remove HTML, extra whitespace, etc.)",
				Priority:       "High",
			}},
		}
	}
	t := r.Table
	p := profileOf(t)
	var ops []CleaningOp
	for _, c := range t.Columns {
		n := p.Missing[c]
		if n == 0 {
			continue
		}
		prio := "Medium"
		if float64(n)/float64(p.Rows) > 0.1 {
			prio = "High"
		}
		ops = append(ops, CleaningOp{Column: c, Issue: fmt.Sprintf("Missing values (%d)", n), Recommendation: "Fill missing values or drop rows with missing values", Priority: prio})
	}
	if p.Duplicates > 0 {
		ops = append(ops, CleaningOp{Column: "all", Issue: fmt.Sprintf("Duplicate rows (%d)", p.Duplicates), Recommendation: "Remove duplicate rows", Priority: "High"})
	}
	for _, c := range p.Numeric {
		if textual(t, c) {
			ops = append(ops, CleaningOp{Column: c, Issue: "Text column with numeric values", Recommendation: "Convert to numeric type", Priority: "Medium"})
		}
	}
	for _, c := range p.Datetime {
		if textual(t, c) {
			ops = append(ops, CleaningOp{Column: c, Issue: "Potential datetime column", Recommendation: "Convert to datetime type", Priority: "Medium"})
		}
	}
	for _, c := range p.Categorical {
		ops = append(ops, CleaningOp{Column: c, Issue: "Text data may need cleaning", Recommendation: "Clean text (lowercase, remove special chars, etc.)", Priority: "Medium"})
	}
	return CleaningPlan{
		Overview:   fmt.Sprintf("The dataset has %d rows and %d columns.", p.Rows, len(t.Columns)),
		Operations: ops,
	}
}

// textual reports whether the first present value of col is a string.
func textual(t result.Table, col string) bool {
	for _, row := range t.Rows {
		v, ok := row.Get(col)
		if !ok || blank(v) {
			continue
		}
		_, s := v.(string)
		return s
	}
	return false
}

// VisualizationSuggestions recommends charts for the data's column types.
func (a *Advisor) VisualizationSuggestions(ctx context.Context, r result.Result) string {
	prompt := `You are a data visualization expert.

Recommend the most informative charts for this data. For each chart give its type, the columns to use, and what it reveals.

` + sample(r)
	out, err := a.ask(ctx, prompt, false, 1000)
	if err != nil || out == "" {
		logFallback("visualization", err)
		return fallbackVisualization(r)
	}
	return out
}

func fallbackVisualization(r result.Result) string {
	if !isTable(r) {
		return "# Visualization Suggestions\n\n## Overview\nThe data is text, which limits visualization options. Consider converting it to structured data first.\n\n" +
			"## Recommended Visualizations\n1. **Word Cloud**: the most frequent words in the text\n2. **Text Length Distribution**: histogram of sentence or paragraph lengths\n"
	}
	p := profileOf(r.Table)
	var b strings.Builder
	b.WriteString("# Visualization Suggestions\n\n## Overview\n")
	if len(r.Table.Columns) < 2 {
		b.WriteString("The dataset has limited columns for rich visualizations.\n")
	} else {
		fmt.Fprintf(&b, "The dataset has %d numeric, %d categorical and %d datetime columns.\n", len(p.Numeric), len(p.Categorical), len(p.Datetime))
	}
	b.WriteString("\n## Recommended Visualizations\n")
	n := 0
	add := func(title, detail string) {
		n++
		fmt.Fprintf(&b, "%d. **%s**: %s\n", n, title, detail)
	}
	if len(p.Categorical) > 0 {
		add("Bar Chart", "distribution of "+p.Categorical[0])
	}
	if len(p.Numeric) > 0 {
		add("Histogram", "distribution of "+p.Numeric[0])
	}
	if len(p.Numeric) >= 2 {
		add("Scatter Plot", p.Numeric[0]+" vs "+p.Numeric[1])
	}
	if len(p.Categorical) > 0 && len(p.Numeric) > 0 {
		add("Box Plot", p.Numeric[0]+" across "+p.Categorical[0])
	}
	if len(p.Datetime) > 0 && len(p.Numeric) > 0 {
		add("Line Chart", p.Numeric[0]+" over "+p.Datetime[0])
	}
	if len(p.Numeric) > 2 {
		add("Heatmap", "correlations between numeric columns")
	}
	if len(p.Categorical) > 0 {
		add("Pie Chart", "proportion of "+p.Categorical[0]+" categories")
	}
	return b.String()
}

// SocialAnalysis suggests analyses for posts collected from platform.
func (a *Advisor) SocialAnalysis(ctx context.Context, platform string, r result.Result) string {
	prompt := `You are a social media analytics expert.

Here is data collected from ` + platform + `:

` + sample(r) + `

Suggest content, engagement and user behavior analyses for this data, and the visualizations that would present them best.`
	out, err := a.ask(ctx, prompt, false, 1000)
	if err != nil || out == "" {
		logFallback("social", err)
		return fallbackSocial(platform, r)
	}
	return out
}

func fallbackSocial(platform string, r result.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s Analysis Suggestions\n\n## Overview\nThe data contains %d entries from %s.\n\n", platform, r.AsTable().Len(), platform)
	b.WriteString("## Content Analysis Ideas\n")
	b.WriteString(bullets("Analyze frequently used words or hashtags", "Detect overall sentiment (positive/negative/neutral)", "Identify common themes or topics"))
	b.WriteString("\n## Engagement Analysis Ideas\n")
	b.WriteString(bullets("Compare engagement metrics (likes, shares, comments)", "Identify factors that correlate with higher engagement", "Analyze time patterns in engagement"))
	b.WriteString("\n## User Behavior Insights\n")
	b.WriteString(bullets("Identify most active users or contributors", "Analyze posting frequency and patterns", "Look for conversation threads or interactions"))
	b.WriteString("\n## Recommended Visualizations\n")
	b.WriteString(bullets("Word cloud of most common terms", "Bar chart of engagement metrics", "Time series of posting activity"))
	return b.String()
}

// Challenge is one anticipated difficulty. Models answer either with a plain
// string or with a {challenge, solution} object; both decode.
type Challenge struct {
	Challenge string `json:"challenge"`
	Solution  string `json:"solution,omitempty"`
}

func (c *Challenge) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		c.Challenge = s
		return nil
	}
	type plain Challenge
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*c = Challenge(p)
	return nil
}

// ExtractionAdvice explains how to pull the data for goal out of a site.
type ExtractionAdvice struct {
	Explanation  string            `json:"explanation"`
	CodeSample   string            `json:"code_sample"`
	CSSSelectors map[string]string `json:"css_selectors,omitempty"`
	Challenges   []Challenge       `json:"challenges,omitempty"`
}

const codeTemplate = `# Extract matching elements with a CSS selector
dataminer web --method selector --selector 'h2.title' --format csv https://example.com/

# Or collect every table across paginated pages
dataminer web --method tables --max-pages 5 https://example.com/`

// ExtractionAdvice asks for an approach, selectors and pitfalls. siteURL is
// optional.
func (a *Advisor) ExtractionAdvice(ctx context.Context, siteURL, goal string) ExtractionAdvice {
	var b strings.Builder
	b.WriteString("You are a web scraping and data extraction expert.\n\nExtraction goal: ")
	b.WriteString(goal)
	b.WriteString("\n\n")
	if strings.TrimSpace(siteURL) != "" {
		b.WriteString("Website URL: " + siteURL + "\n\n")
	}
	b.WriteString(`Provide a general approach, specific techniques, common challenges and how to overcome them, a code sample, and likely CSS selectors when a URL is given.

Format your response as JSON with these fields:
- "explanation": detailed explanation of the approach
- "code_sample": a code sample for the extraction
- "css_selectors": (optional) an object mapping data items to CSS selectors
- "challenges": an array of potential challenges and solutions`)

	var adv ExtractionAdvice
	err := a.askJSON(ctx, b.String(), 1500, &adv)
	if err == nil && adv.Explanation != "" {
		return adv
	}
	logFallback("extraction", err)
	expl := "AI assistance is not available. Set OPENAI_API_KEY to enable it."
	switch {
	case err == nil:
		expl = "The model returned no explanation. Please try again."
	case !errors.Is(err, errNotConfigured):
		expl = fmt.Sprintf("Unable to generate advice due to an error: %v. Please try again.", err)
	}
	return ExtractionAdvice{Explanation: expl, CodeSample: codeTemplate}
}

// Summary is the structured answer of Summarize.
type Summary struct {
	Overview        string   `json:"overview"`
	KeyPoints       []string `json:"key_points"`
	DataQuality     string   `json:"data_quality,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// Summarize characterizes the data, optionally focusing on focus.
func (a *Advisor) Summarize(ctx context.Context, r result.Result, focus string) Summary {
	var stats string
	if isTable(r) {
		p := profileOf(r.Table)
		missing := 0
		for _, n := range p.Missing {
			missing += n
		}
		stats = fmt.Sprintf("Dataset dimensions: %d rows x %d columns\nNumeric columns: %s\nMissing values: %d\n",
			p.Rows, len(r.Table.Columns), strings.Join(p.Numeric, ", "), missing)
	}
	prompt := "You are a data analysis expert.\n\nCreate a comprehensive summary of this dataset.\n\nData statistics:\n" + stats +
		"\nData sample:\n" + sample(r) + "\n"
	if strings.TrimSpace(focus) != "" {
		prompt += "\nFocus especially on: " + focus + "\n"
	}
	prompt += `
Format your response as JSON with these fields:
- "overview": comprehensive summary of the data
- "key_points": array of important insights
- "data_quality": assessment of data quality
- "recommendations": array of recommended next steps`

	var s Summary
	err := a.askJSON(ctx, prompt, 1500, &s)
	if err == nil && s.Overview != "" {
		return s
	}
	logFallback("summarize", err)
	if err == nil || errors.Is(err, errNotConfigured) {
		return Summary{
			Overview: "AI summarization is not available. Please check your OpenAI API key.",
			KeyPoints: []string{
				"Set the OPENAI_API_KEY environment variable to enable AI features",
				"Use the table and export formats to explore the data",
			},
		}
	}
	return Summary{
		Overview:  fmt.Sprintf("Unable to generate summary due to an error: %v.", err),
		KeyPoints: []string{"Error occurred during AI summarization", "Try with a smaller data sample or check your connection"},
	}
}
