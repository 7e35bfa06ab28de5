package finsight

import (
	_ "embed"
	"text/template"
)

//go:embed templates/planner_prompt.md
var plannerPromptTemplate string

//go:embed templates/synthesis_prompt.md
var synthesisPromptTemplate string

//go:embed templates/entity_prompt.md
var entityPromptTemplate string

var (
	plannerTmpl   *template.Template
	synthesisTmpl *template.Template
	entityTmpl    *template.Template
)

func init() {
	plannerTmpl = template.Must(template.New("planner").Parse(plannerPromptTemplate))
	synthesisTmpl = template.Must(template.New("synthesis").Parse(synthesisPromptTemplate))
	entityTmpl = template.Must(template.New("entity").Parse(entityPromptTemplate))
}

type plannerTemplateData struct {
	ToolInfo string
	Query    string
}

type synthesisTemplateData struct {
	Query      string
	Results    string
	Confidence string
}

type entityTemplateData struct {
	Query string
}
