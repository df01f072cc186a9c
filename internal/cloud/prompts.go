// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cloud

import (
	"fmt"
	"strings"
	"text/template"
)

const DefaultTranslatePrompt = `
You are an expert translator from {{.From}} to {{.To}}.
You can capture all the nuances of both languages to accurately
translate the text.
You must understand the audio in order to translate it.

Your output should only be the original text and the translated text
in a json format like this:

{
    "original": "Original text here.",
    "translated": "Translated text here."
}

DO NOT output any other thing other than this json.
DO NOT use any formatting, just pure plain json format.
`

const DefaultOCRPrompt = `
OCR this image and list all the detected words/phrases.
Do not write anything else.
`

const DefaultSpeechPrompt = `
Say the following text moderately cheerfully in the {{.Language}} language:

{{.Text}}
`

// Prompts holds the parsed prompt templates.
type Prompts struct {
	translate *template.Template
	ocr       *template.Template
	speech    *template.Template
}

// NewPrompts parses the configured templates, falling back to the defaults
// for empty entries.
func NewPrompts(p PromptTemplates) (*Prompts, error) {
	parse := func(name, src, def string) (*template.Template, error) {
		if strings.TrimSpace(src) == "" {
			src = def
		}
		t, err := template.New(name).Option("missingkey=error").Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parse %s prompt: %w", name, err)
		}
		return t, nil
	}

	var out Prompts
	var err error
	if out.translate, err = parse("translate", p.Translate, DefaultTranslatePrompt); err != nil {
		return nil, err
	}
	if out.ocr, err = parse("ocr", p.OCR, DefaultOCRPrompt); err != nil {
		return nil, err
	}
	if out.speech, err = parse("speech", p.Speech, DefaultSpeechPrompt); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *Prompts) Translate(from, to string) (string, error) {
	return render(p.translate, struct{ From, To string }{from, to})
}

func (p *Prompts) OCR() (string, error) {
	return render(p.ocr, nil)
}

func (p *Prompts) Speech(language, text string) (string, error) {
	return render(p.speech, struct{ Language, Text string }{language, text})
}

func render(t *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", t.Name(), err)
	}
	return sb.String(), nil
}
