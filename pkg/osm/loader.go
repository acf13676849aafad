package osm

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/pandu-nav/pandu/pkg/util"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmxml"
	"go.uber.org/zap"
)

// LoadFile decodes an OSM XML dump (plain .osm or bzip2-compressed .osm.bz2)
// and streams its nodes and ways into the ingester. OSM dumps order nodes
// before ways, so a single pass is enough.
func LoadFile(ctx context.Context, path string, ing *Ingester, log *zap.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return util.WrapErrorf(err, util.ErrNotFound, "osm: open %s", path)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".bz2") {
		bz, err := bzip2.NewReader(f, nil)
		if err != nil {
			return util.WrapErrorf(err, util.ErrBadParamInput, "osm: bzip2 reader for %s", path)
		}
		defer bz.Close()
		r = bz
	}

	log.Info("loading osm dump", zap.String("path", path))

	return LoadReader(ctx, r, ing, log)
}

// LoadReader streams OSM XML from r into the ingester.
func LoadReader(ctx context.Context, r io.Reader, ing *Ingester, log *zap.Logger) error {
	scanner := osmxml.New(ctx, r)
	defer scanner.Close()

	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			ing.IngestNode(NodeEvent{
				ID:  int64(o.ID),
				Lat: o.Lat,
				Lon: o.Lon,
			})
		case *osm.Way:
			refs := make([]int64, 0, len(o.Nodes))
			for _, wn := range o.Nodes {
				refs = append(refs, int64(wn.ID))
			}
			tags := make(map[string]string, len(o.Tags))
			for _, tag := range o.Tags {
				tags[tag.Key] = tag.Value
			}
			ing.IngestWay(WayEvent{
				ID:       int64(o.ID),
				NodeRefs: refs,
				Tags:     tags,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return util.WrapErrorf(err, util.ErrBadParamInput, "osm: scan dump")
	}

	nodes, ways, roads := ing.Stats()
	log.Info("osm dump loaded",
		zap.Int("nodes", nodes), zap.Int("ways", ways), zap.Int("roads", roads))

	if nodes == 0 || roads == 0 {
		return util.WrapErrorf(nil, util.ErrBadParamInput, "osm: dump contained no routable roads")
	}
	return nil
}
