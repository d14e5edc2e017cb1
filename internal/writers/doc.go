// Package writers turns alignment results into serialized outputs.
//
// Formats are looked up in a registry, so commands never switch on format
// names themselves. StartResultWriter streams many results through one
// goroutine, which is how batch runs keep output ordered and unmixed.
// JSON, JSONL and YAML go through pkg/api (v1) for a stable wire format.
package writers
