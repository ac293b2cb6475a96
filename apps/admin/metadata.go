package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/nelc/eoxnelp/core"
	"github.com/nelc/eoxnelp/core/program"
)

func (cli *commandLine) printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cli.out, string(data))
	return err
}

func (cli *commandLine) getMetadata(ctx context.Context, courseID string) error {
	md, err := cli.programSvc.GetMetadata(ctx, courseID)
	if err != nil {
		return err
	}
	return cli.printJSON(md)
}

func (cli *commandLine) setMetadata(ctx context.Context, courseID, path, editor string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading metadata file")
	}
	var data map[string]interface{}
	if err = json.Unmarshal(raw, &data); err != nil {
		return errors.Wrap(err, "decoding metadata file")
	}
	md, err := program.DecodeMetadata(data, cli.validate, cli.translator)
	if err != nil {
		return err
	}

	actor, err := cli.usrRepo.GetUserByUsername(ctx, core.CleanString(editor, true /* lower */))
	if err != nil {
		return errors.Wrap(err, "getting editor")
	}
	if err = cli.programSvc.UpdateMetadata(ctx, courseID, md.ToMap(), actor); err != nil {
		return err
	}
	return cli.printJSON(md.ToMap())
}
