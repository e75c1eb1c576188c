package synthesis

import (
	"fmt"
	"strings"

	"github.com/evidentia/docsynth/core"
)

// policyBriefTemplate is the policy analyst prompt. The %s placeholder
// receives the numbered evidence block built by buildContext.
const policyBriefTemplate = `You are an expert policy analyst.
You are tasked with writing a professional, policy-oriented synthesis of a sustainable development challenge using UN language (but precise), based strictly on the following Extracted Information from multiple validated documents.

Extracted Information:
%s

Objective:
Produce a coherent, evidence-rich analytical summary suitable for UN agencies, government stakeholders, and development partners. The summary must rely strictly on the provided Extracted Information and cite sources accordingly.

Requirements:

1. Structure & Flow:
- Begin with a **high-level framing paragraph** under the INTRODUCTION section, explaining why the issue is strategically important to national development, regional stability, or humanitarian priorities.
- Under MAIN BODY, structure your analysis using full paragraphs only — no bullet points or numbered sections.
- Ensure ideas flow logically with smooth transitions across sections.

2. Evidence Integration:
- For every factual claim, include a **footnote-style superscript citation marker**, e.g., [1], [2], etc., matching the numbering of the Extracted Information.
- Integrate **numbers and disaggregated evidence** wherever possible — this is mandatory.
- Always prioritize the **most recent data**.
- Use **short document aliases** (e.g., *HER_PID.pdf*) in citations.

3. Language Style:
- Maintain a professional, analytical tone aligned with UN and CCA drafting standards.
- Avoid vague generalizations and empty phrasing.
- Use varied sentence structures and transitions for smooth readability.

4. Section Guidelines:

**TITLE**
- Rephrase the original challenge into a concise, evidence-based analytical title (max 15 words) aligned with SDG themes.

**EXECUTIVE SUMMARY** (150-200 words)
- Concise overview of the challenge, key findings, and implications

**INTRODUCTION**
- Define the development challenge and briefly explain its strategic relevance.

**MAIN BODY (auto-generated headings)**
- Use thematic section headings based on the Extracted Information.
- Analyze causes, consequences, structural barriers, systemic linkages, and opportunities for response.

**CONCLUSION**
- Provide a concise synthesis of insights based only on the Extracted Information.

**REFERENCES**
- Format citations as footnotes using [1], [2], etc.

Target length: ~1000 words (~2 pages).`

// buildContext assembles the numbered evidence block for the prompt.
// Entry n carries citation marker [n], so the generated brief's footnotes
// map back to SourceRef entries with the same number.
func buildContext(chunks []*core.ScoredChunk) string {
	var sb strings.Builder
	for i, scored := range chunks {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		text := strings.ReplaceAll(strings.TrimSpace(scored.Chunk.Text), "\n", " ")
		fmt.Fprintf(&sb, "[%d] %s (Source: %s)", i+1, text, scored.Chunk.SourceDocument)
	}
	return sb.String()
}

// buildBriefPrompt renders the full policy brief prompt for the evidence.
func buildBriefPrompt(chunks []*core.ScoredChunk) string {
	return fmt.Sprintf(policyBriefTemplate, buildContext(chunks))
}

// sourceRefs maps the prompt's citation numbers back to chunk metadata.
func sourceRefs(chunks []*core.ScoredChunk) []core.SourceRef {
	refs := make([]core.SourceRef, len(chunks))
	for i, scored := range chunks {
		refs[i] = core.SourceRef{
			Ref:            i + 1,
			SourceDocument: scored.Chunk.SourceDocument,
			Theme:          scored.Chunk.Theme,
		}
	}
	return refs
}
