// Package examplescenes ships the built-in demonstration scenarios selectable
// from the command line.
package examplescenes

import (
	"fmt"
	"sort"

	"github.com/hupe1980/scenegen/scene"
)

var scenes = map[string]scene.Context{
	"ancient_study": {
		Script:      "A scholar studies late into the night preparing for the imperial examination. Moonlight falls through the window onto a desk piled with books and writing implements.",
		Requirement: "Generate an ancient study, conveying the scholar's learning environment and daily life.",
		Era:         "Ming dynasty",
		Location:    "A study in a small southern town",
		Atmosphere:  "Quiet, focused, faintly melancholic",
		Style:       "Classical literati",
	},
	"modern_office": {
		Script:      "A programmer works overtime late at night, alone in the office. Coffee, a laptop and scattered paperwork cover the desk.",
		Requirement: "Generate a modern office scene capturing the late-night crunch.",
		Era:         "Present day",
		Location:    "A downtown office tower",
		Atmosphere:  "Tired, focused, lonely",
		Style:       "Contemporary urban",
	},
	"fantasy_tavern": {
		Script:      "Adventurers rest in a fantasy tavern filled with strange creatures and a mysterious atmosphere.",
		Requirement: "Generate a fantasy tavern scene full of fantastical elements.",
		Era:         "Fantasy medieval",
		Location:    "An adventurers' tavern in a border town",
		Atmosphere:  "Lively, mysterious, adventurous",
		Style:       "High fantasy",
	},
	"crime_scene": {
		Script:      "A detective investigates a locked-room case. The room holds all manner of suspicious clues and objects.",
		Requirement: "Generate a crime scene containing potential clues.",
		Era:         "Present day",
		Location:    "A city apartment",
		Atmosphere:  "Tense, suspenseful, oppressive",
		Style:       "Detective fiction",
	},
}

// Names returns the available scenario names, sorted.
func Names() []string {
	out := make([]string, 0, len(scenes))
	for name := range scenes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Get returns the named scenario context.
func Get(name string) (scene.Context, error) {
	ctx, ok := scenes[name]
	if !ok {
		return scene.Context{}, fmt.Errorf("unknown example %q (available: %v)", name, Names())
	}
	return ctx, nil
}
