package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nelc/eoxnelp/core/saml"
)

// applySAMLTemplate saves the template described by a YAML file, updating the one with the same name if any.
func (cli *commandLine) applySAMLTemplate(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading template file")
	}
	t := saml.NewTemplate("")
	if err = yaml.Unmarshal(raw, &t); err != nil {
		return errors.Wrap(err, "decoding template file")
	}

	existing, err := cli.samlRepo.GetTemplateByName(ctx, strings.TrimSpace(t.Name))
	switch errors.Cause(err) {
	case nil:
		t.ID = existing.ID
	case saml.ErrTemplateNotFound:
	default:
		return err
	}

	saved, err := cli.samlSvc.Save(ctx, t)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "saml template %q (id %d) applied to %d site(s)\n", saved.Name, saved.ID, len(saved.SiteIDs))
	return nil
}

func (cli *commandLine) addSAMLSites(ctx context.Context, name, ids string) error {
	siteIDs := make([]int, 0)
	for _, s := range strings.Split(ids, ",") {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		id, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("site id must be a number (got '%s')", s)
		}
		siteIDs = append(siteIDs, id)
	}

	t, err := cli.samlRepo.GetTemplateByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return err
	}
	t, err = cli.samlSvc.AddSites(ctx, t.ID, siteIDs...)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "saml template %q now has sites %v\n", t.Name, t.SiteIDs)
	return nil
}
