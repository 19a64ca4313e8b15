package format

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"

	"github.com/floe-data/floe/types"
)

// deltaAcceptedWriter writes an accepted dataset as a minimal single-commit
// Delta Lake table: one or more Parquet part files plus a hand-rolled
// _delta_log commit containing the protocol and metaData actions and one add
// action per part file, which is what a reader needs to
// discover it (spec.md §3 DOMAIN STACK: no maintained pure-Go Delta writer
// exists, so this package only emits the single-commit subset of the
// protocol Floe itself needs).
type deltaAcceptedWriter struct {
	rootDir string
	plan    types.ColumnPlan
	parquet AcceptedWriter
}

// NewDeltaAcceptedWriter opens a Delta table rooted at localDir.
func NewDeltaAcceptedWriter(localDir string, plan types.ColumnPlan) (AcceptedWriter, error) {
	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return nil, err
	}
	pw, err := NewParquetAcceptedWriter(localDir, plan, nil)
	if err != nil {
		return nil, err
	}
	return &deltaAcceptedWriter{rootDir: localDir, plan: plan, parquet: pw}, nil
}

func (w *deltaAcceptedWriter) Write(ctx context.Context, plan types.ColumnPlan, rows []AcceptedRow) error {
	return w.parquet.Write(ctx, plan, rows)
}

func (w *deltaAcceptedWriter) Close(ctx context.Context) ([]string, error) {
	parts, err := w.parquet.Close(ctx)
	if err != nil {
		return nil, err
	}

	logDir := filepath.Join(w.rootDir, "_delta_log")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}

	actions := []deltaAction{
		{Protocol: &deltaProtocol{MinReaderVersion: 1, MinWriterVersion: 2}},
		{MetaData: &deltaMetaData{
			ID:               "floe-" + w.rootDir,
			Format:           deltaFormat{Provider: "parquet"},
			SchemaString:     deltaSchemaString(w.plan),
			PartitionColumns: []string{},
		}},
	}
	for _, part := range parts {
		info, err := os.Stat(filepath.Join(w.rootDir, part))
		if err != nil {
			return nil, err
		}
		actions = append(actions, deltaAction{Add: &deltaAdd{Path: part, Size: info.Size(), DataChange: true}})
	}

	f, err := os.Create(filepath.Join(logDir, "00000000000000000000.json"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(f)
	for _, a := range actions {
		if err := enc.Encode(a); err != nil {
			return nil, err
		}
	}
	return parts, nil
}

type deltaAction struct {
	Protocol *deltaProtocol `json:"protocol,omitempty"`
	MetaData *deltaMetaData `json:"metaData,omitempty"`
	Add      *deltaAdd      `json:"add,omitempty"`
}

type deltaProtocol struct {
	MinReaderVersion int `json:"minReaderVersion"`
	MinWriterVersion int `json:"minWriterVersion"`
}

type deltaFormat struct {
	Provider string `json:"provider"`
}

type deltaMetaData struct {
	ID               string      `json:"id"`
	Format           deltaFormat `json:"format"`
	SchemaString     string      `json:"schemaString"`
	PartitionColumns []string    `json:"partitionColumns"`
}

type deltaAdd struct {
	Path       string `json:"path"`
	Size       int64  `json:"size"`
	DataChange bool   `json:"dataChange"`
}

// deltaSchemaString renders the plan as Delta's Spark-struct-JSON schema
// representation.
func deltaSchemaString(plan types.ColumnPlan) string {
	type field struct {
		Name     string `json:"name"`
		Type     string `json:"type"`
		Nullable bool   `json:"nullable"`
		Metadata struct{} `json:"metadata"`
	}
	type schema struct {
		Type   string  `json:"type"`
		Fields []field `json:"fields"`
	}
	s := schema{Type: "struct"}
	for _, col := range plan.Columns {
		s.Fields = append(s.Fields, field{
			Name:     col.Name,
			Type:     deltaTypeName(col.Type),
			Nullable: col.Nullable,
		})
	}
	out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalToString(s)
	if err != nil {
		return fmt.Sprintf(`{"type":"struct","fields":[]}`)
	}
	return out
}

func deltaTypeName(t types.LogicalType) string {
	switch t {
	case types.TypeString:
		return "string"
	case types.TypeBoolean:
		return "boolean"
	case types.TypeInt8:
		return "byte"
	case types.TypeInt16:
		return "short"
	case types.TypeInt32, types.TypeUint8, types.TypeUint16:
		return "integer"
	case types.TypeInt64, types.TypeUint32, types.TypeUint64:
		return "long"
	case types.TypeFloat32:
		return "float"
	case types.TypeFloat64:
		return "double"
	case types.TypeDate:
		return "date"
	case types.TypeDatetime, types.TypeTime:
		return "timestamp"
	default:
		return "string"
	}
}
