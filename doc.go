// Package jsonpit is the composition root for JsonPit, an embedded,
// file-backed document store that keeps the full history of every named
// record.
//
// Each write of an item is compared with the latest stored version of its
// name; identical content is ignored and anything else becomes a new
// version. Reads return the current value or the value as of any past
// instant. State is saved to a single consolidated file, JSON by default,
// with YAML and msgpack codecs available.
//
// Features:
//
//   - **Deduplicated writes**: unchanged content never creates a version.
//   - **Time travel**: GetAt returns the version valid at a timestamp.
//   - **Tombstones**: deletes are versions too, so history survives them.
//   - **Crash-safe saves**: atomic temp file, move and .bak backup.
//   - **Many writers**: secondary processes append change files that the
//     primary folds in on its next save.
//   - **Typed access**: `NewTyped[T]` maps properties onto Go structs.
//
// Usage:
//
//	p, err := jsonpit.Open("~/pits/ObjectPit", jsonpit.WithMaxCount(100))
//	if err != nil {
//		return err
//	}
//	defer p.Close(ctx)
//
//	it, _ := jsonpit.NewItemFrom("EURUSD", map[string]any{"bid": 1.0841})
//	added, err := p.Add(it)
package jsonpit
