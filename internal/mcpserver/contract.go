package mcpserver

// DocumentContract describes how Ansuz stores documents so that LLM
// consumers produce content that renders and exports cleanly.
const DocumentContract = `# Ansuz Document Contract

Every document in Ansuz is a Markdown body with its metadata stored
alongside the text, not inside it.

## Structure

1. **Title is metadata.** Pass it through the ` + "`" + `title` + "`" + ` tool argument. Do
   NOT add YAML frontmatter and do NOT duplicate the title as a leading
   ` + "`" + `# heading` + "`" + ` unless the body genuinely needs one.
2. **Tags are metadata.** Pass them as a comma-separated string
   (e.g. ` + "`" + `meeting-notes, project-x` + "`" + `). Lowercase, kebab-case.
3. **The body is standard Markdown.** GitHub-flavored extensions are
   rendered: tables, strikethrough, task lists, autolinks.
4. **No raw HTML.** Script and style content is stripped from previews
   and exports; prefer Markdown equivalents.
5. **Encoding** is UTF-8.

## Exports

The ` + "`" + `export_document` + "`" + ` tool renders a document to a file on disk.

- ` + "`" + `pdf` + "`" + `  - printable pages (A4 by default).
- ` + "`" + `html` + "`" + ` - standalone page with inline styling.
- ` + "`" + `docx` + "`" + ` - Word document, one paragraph per Markdown block.
- ` + "`" + `xlsx` + "`" + ` - workbook with the body in column A, one row per block.

## Example

` + "```" + `
create_document
  title:   Weekly standup 2026-08-24
  tags:    meeting-notes, project-x
  content: |
    Attendees: Alice, Bob.

    ## Action items

    - [ ] Alice to review the design doc
    - [ ] Bob to update the roadmap
` + "```" + `
`
