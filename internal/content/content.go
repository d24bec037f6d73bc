// Package content loads battle rosters from YAML or CUE files.
//
// Both formats share one document shape:
//
//	name: Goblin Ambush
//	first: players        # or enemies; default players
//	mana: 20
//	max_mana: 20          # default: mana
//	mana_regen: 5
//	enemy_think: 0.5      # seconds
//	players:
//	  - name: Hero
//	    health: 30
//	    attacks:
//	      - {name: Slash, power: 8}
//	      - {name: Fireball, power: 15, mana_cost: 10}
//	enemies:
//	  - ...
//
// CUE files are additionally checked against an embedded schema before
// decoding, so type errors carry CUE positions.
package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/roach88/battle/internal/battle"
)

//go:embed schema.cue
var schemaSource string

// Format is a content file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", &LoadError{Code: ErrCodeFormat, Message: fmt.Sprintf("unsupported content file %q (want .yaml, .yml or .cue)", path)}
	}
}

// Content is a validated battle definition.
type Content struct {
	Name   string
	Path   string
	Roster battle.Roster
}

type document struct {
	Name       string         `yaml:"name" json:"name"`
	First      string         `yaml:"first" json:"first"`
	Mana       int            `yaml:"mana" json:"mana"`
	MaxMana    int            `yaml:"max_mana" json:"max_mana"`
	ManaRegen  int            `yaml:"mana_regen" json:"mana_regen"`
	EnemyThink float64        `yaml:"enemy_think" json:"enemy_think"`
	Players    []characterDoc `yaml:"players" json:"players"`
	Enemies    []characterDoc `yaml:"enemies" json:"enemies"`
}

type characterDoc struct {
	Name    string      `yaml:"name" json:"name"`
	Health  int         `yaml:"health" json:"health"`
	Attacks []attackDoc `yaml:"attacks" json:"attacks"`
}

type attackDoc struct {
	Name     string `yaml:"name" json:"name"`
	Power    int    `yaml:"power" json:"power"`
	ManaCost int    `yaml:"mana_cost" json:"mana_cost"`
	Heal     bool   `yaml:"heal" json:"heal"`
}

// Load reads, parses and validates the content file at path.
// Validation problems are returned together, joined with errors.Join.
func Load(path string) (*Content, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("content file not found: %s", path)}
		}
		return nil, fmt.Errorf("read content: %w", err)
	}
	c, err := Parse(data, format, path)
	if err != nil {
		return nil, err
	}
	c.Path = path
	return c, nil
}

// Parse decodes and validates content in the given format. filename is
// only used in error positions.
func Parse(data []byte, format Format, filename string) (*Content, error) {
	var (
		doc document
		err error
	)
	switch format {
	case FormatYAML:
		err = decodeYAML(data, &doc)
	case FormatCUE:
		err = decodeCUE(data, filename, &doc)
	default:
		err = &LoadError{Code: ErrCodeFormat, Message: fmt.Sprintf("unknown format %q", format)}
	}
	if err != nil {
		return nil, err
	}

	normalize(&doc)
	if errs := validate(&doc); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &Content{Name: doc.Name, Roster: doc.roster()}, nil
}

func decodeYAML(data []byte, doc *document) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(doc); err != nil {
		return &LoadError{Code: ErrCodeParse, Message: err.Error()}
	}
	return nil
}

func decodeCUE(data []byte, filename string, doc *document) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue")).LookupPath(cue.ParsePath("#Battle"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("content schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return errors.Join(fromCUE(err)...)
	}
	v = schema.Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return errors.Join(fromCUE(err)...)
	}
	if err := v.Decode(doc); err != nil {
		return errors.Join(fromCUE(err)...)
	}
	return nil
}

// normalize puts names in NFC so visually identical names compare equal,
// and fills defaults.
func normalize(doc *document) {
	doc.Name = norm.NFC.String(strings.TrimSpace(doc.Name))
	for _, group := range [][]characterDoc{doc.Players, doc.Enemies} {
		for i := range group {
			group[i].Name = norm.NFC.String(strings.TrimSpace(group[i].Name))
			for j := range group[i].Attacks {
				group[i].Attacks[j].Name = norm.NFC.String(strings.TrimSpace(group[i].Attacks[j].Name))
			}
		}
	}
	if doc.MaxMana == 0 {
		doc.MaxMana = doc.Mana
	}
	if doc.First == "" {
		doc.First = battle.Players.String()
	}
}

func (doc *document) roster() battle.Roster {
	r := battle.Roster{
		Players:    characters(doc.Players),
		Enemies:    characters(doc.Enemies),
		Mana:       doc.Mana,
		MaxMana:    doc.MaxMana,
		ManaRegen:  doc.ManaRegen,
		EnemyThink: doc.EnemyThink,
	}
	if doc.First == battle.Enemies.String() {
		r.First = battle.Enemies
	}
	return r
}

func characters(docs []characterDoc) []battle.Character {
	out := make([]battle.Character, 0, len(docs))
	for _, d := range docs {
		c := battle.Character{Name: d.Name, MaxHealth: d.Health, Health: d.Health}
		for _, a := range d.Attacks {
			c.Attacks = append(c.Attacks, battle.Attack{Name: a.Name, Power: a.Power, ManaCost: a.ManaCost, Heal: a.Heal})
		}
		out = append(out, c)
	}
	return out
}
