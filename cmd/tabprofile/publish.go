package main

import (
	"bytes"
	"context"

	"github.com/kbukum/tabprofile/dag"
	"github.com/kbukum/tabprofile/eda"
	"github.com/kbukum/tabprofile/errors"
	"github.com/kbukum/tabprofile/logger"
	"github.com/kbukum/tabprofile/observability"
	"github.com/kbukum/tabprofile/report"
	"github.com/kbukum/tabprofile/storage"
)

// exportDiagram writes the Mermaid rendering of g to the object ref.
func exportDiagram(ctx context.Context, cfg storage.Config, g *dag.Graph, ref string) error {
	diagram, err := dag.Mermaid(g)
	if err != nil {
		return err
	}
	loc, key, err := storage.SplitObject(ref)
	if err != nil {
		return err
	}
	return put(ctx, cfg, loc, key, []byte(diagram))
}

// publishReport uploads the JSON document of out below location and returns
// its key.
func publishReport(ctx context.Context, cfg storage.Config, location string, out *eda.Outcome) (string, error) {
	loc, err := storage.ParseLocation(location)
	if err != nil {
		return "", errors.InvalidInput("output", err.Error())
	}
	var buf bytes.Buffer
	if err := report.JSON(&buf, out); err != nil {
		return "", err
	}
	key := out.RunID + ".json"
	return key, put(ctx, cfg, loc, key, buf.Bytes())
}

func put(ctx context.Context, cfg storage.Config, loc storage.Location, key string, data []byte) error {
	ctx, span := observability.StartSpan(ctx, observability.SpanExport)
	defer span.End()
	observability.SetSpanAttribute(ctx, "storage.location", loc.String())
	observability.SetSpanAttribute(ctx, "storage.key", key)

	st, err := storage.OpenLocation(ctx, cfg, loc, logger.Get(logger.ComponentStorage))
	if err != nil {
		observability.SetSpanError(ctx, err)
		return errors.Storage("open", err)
	}
	if err := storage.UploadBytes(ctx, st, key, data); err != nil {
		observability.SetSpanError(ctx, err)
		return errors.Storage("upload", err)
	}
	return nil
}
