package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/quest-engine/pkg/content"
)

func main() {
	schema := flag.Bool("schema", false, "print the campaign JSON schema and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-schema] <campaign_dir>...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *schema {
		data, err := content.SchemaJSON()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to build schema: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	failed := false
	for _, dir := range flag.Args() {
		if err := validateDir(dir); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("Campaign %s is valid!\n", dir)
	}
	if failed {
		os.Exit(1)
	}
}

func validateDir(dir string) error {
	fmt.Printf("Validating %s...\n", dir)

	name := filepath.Base(filepath.Clean(dir))
	if !isValidCampaignDir(name) {
		return fmt.Errorf("campaign directory '%s' must be lowercase snake_case (e.g., river_town, not river-town or RiverTown)", name)
	}

	c, err := content.Load(dir)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", dir, err)
	}

	var problems []string
	for _, msg := range idProblems(c) {
		problems = append(problems, "  - "+msg)
	}
	if err := c.Validate(); err != nil {
		var verr *content.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		for _, p := range verr.Problems {
			problems = append(problems, "  - "+p.String())
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", dir, strings.Join(problems, "\n"))
	}
	return nil
}

// idProblems lists content ids that are not lowercase snake_case.
func idProblems(c *content.Campaign) []string {
	var out []string
	check := func(kind, id string) {
		if id != "" && !isValidID(id) {
			out = append(out, fmt.Sprintf("%s '%s' should be lowercase snake_case", kind, id))
		}
	}
	for _, it := range c.Items {
		check("item ID", it.ID)
	}
	for _, en := range c.Enemies {
		check("enemy ID", en.ID)
	}
	for _, n := range c.NPCs {
		check("NPC ID", n.ID)
	}
	for _, t := range c.Traders {
		check("trader ID", t.ID)
	}
	for _, d := range c.Dialogues {
		check("dialogue ID", d.ID)
		for _, n := range d.Nodes {
			check("dialogue node ID", n.ID)
		}
	}
	for _, t := range c.Templates {
		check("template ID", t.ID)
	}
	for _, k := range c.KeyQuests {
		check("key quest ID", k.ID)
	}
	for _, l := range c.Atlas.Locations {
		check("location ID", l.ID)
	}
	for _, ch := range c.Chests {
		check("chest ID", ch.ID)
	}
	return out
}

var (
	validIDRegex      = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)*$`)
	validCampaignDirs = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)*$`)
)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

func isValidCampaignDir(name string) bool {
	// Allow 'x.' prefix for experimental campaigns
	name = strings.TrimPrefix(name, "x.")
	return validCampaignDirs.MatchString(name)
}
