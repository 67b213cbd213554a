package tool

import (
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/schema"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/openai/openai-go"
	"github.com/rs/zerolog/log"
)

const (
	ToolSearchGifts   = "search_gifts"
	ToolSelectGift    = "select_gift"
	ToolCheckNiceList = "check_nice_list"
)

type ParamType string

const (
	ParamString  ParamType = "string"
	ParamInteger ParamType = "integer"
)

// Param describes one tool argument. Minimum and Maximum are published in the
// schema for the model; they are hints, not validation rules.
type Param struct {
	Name     string
	Type     ParamType
	Desc     string
	Required bool
	Minimum  *int64
	Maximum  *int64
}

// Definition is the single source for a tool's published schema.
type Definition struct {
	Name   string
	Desc   string
	Params []Param
}

// Param returns the named argument definition.
func (d Definition) Param(name string) (Param, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

func bound(v int64) *int64 { return &v }

var definitions = []Definition{
	{
		Name: ToolSearchGifts,
		Desc: "Search for gift ideas based on what the child wants",
		Params: []Param{
			{Name: "query", Type: ParamString, Required: true, Desc: "What to search for (e.g., 'lego sets', 'dolls', 'video games for kids')"},
			{Name: "child_age", Type: ParamInteger, Desc: "Approximate age of the child (optional)", Minimum: bound(3), Maximum: bound(16)},
		},
	},
	{
		Name: ToolSelectGift,
		Desc: "Select a specific gift from the search results",
		Params: []Param{
			{Name: "gift_choice", Type: ParamInteger, Required: true, Desc: "The option number (1, 2, 3, or 4)", Minimum: bound(1), Maximum: bound(4)},
		},
	},
	{
		Name: ToolCheckNiceList,
		Desc: "Check if a child is on the nice list",
		Params: []Param{
			{Name: "name", Type: ParamString, Desc: "The child's name"},
		},
	},
}

// Definitions returns the tool definitions in registration order.
func Definitions() []Definition {
	return append([]Definition(nil), definitions...)
}

// Lookup finds a definition by tool name.
func Lookup(name string) (Definition, bool) {
	for _, def := range definitions {
		if def.Name == name {
			return def, true
		}
	}
	return Definition{}, false
}

// ToolInfos renders the definitions as eino tool infos. They are the schema
// that OpenAITools publishes.
func ToolInfos() []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(definitions))
	for _, def := range definitions {
		params := openapi3.NewObjectSchema()
		params.Required = []string{}
		for _, p := range def.Params {
			prop := openapi3.NewStringSchema()
			if p.Type == ParamInteger {
				prop = openapi3.NewIntegerSchema()
			}
			prop.Description = p.Desc
			if p.Minimum != nil {
				prop.WithMin(float64(*p.Minimum))
			}
			if p.Maximum != nil {
				prop.WithMax(float64(*p.Maximum))
			}
			params.WithProperty(p.Name, prop)
			if p.Required {
				params.Required = append(params.Required, p.Name)
			}
		}
		infos = append(infos, &schema.ToolInfo{
			Name:        def.Name,
			Desc:        def.Desc,
			ParamsOneOf: schema.NewParamsOneOfByOpenAPIV3(params),
		})
	}
	return infos
}

// OpenAITools renders the tool infos in OpenAI function-calling form, the
// shape the dialogue driver consumes.
func OpenAITools() []openai.ChatCompletionToolParam {
	infos := ToolInfos()
	tools := make([]openai.ChatCompletionToolParam, 0, len(infos))
	for _, info := range infos {
		params, err := functionParameters(info)
		if err != nil {
			log.Error().Err(err).Str("tool", info.Name).Msg("skipping tool with unrenderable schema")
			continue
		}
		tools = append(tools, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        info.Name,
				Description: openai.String(info.Desc),
				Parameters:  params,
			},
		})
	}
	return tools
}

func functionParameters(info *schema.ToolInfo) (openai.FunctionParameters, error) {
	sc, err := info.ParamsOneOf.ToOpenAPIV3()
	if err != nil {
		return nil, fmt.Errorf("render %s params: %w", info.Name, err)
	}
	if sc == nil {
		sc = openapi3.NewObjectSchema()
	}

	raw, err := json.Marshal(sc)
	if err != nil {
		return nil, fmt.Errorf("encode %s params: %w", info.Name, err)
	}
	params := openai.FunctionParameters{}
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, fmt.Errorf("decode %s params: %w", info.Name, err)
	}
	if _, ok := params["required"]; !ok {
		params["required"] = []string{}
	}
	if _, ok := params["properties"]; !ok {
		params["properties"] = map[string]any{}
	}
	return params, nil
}
