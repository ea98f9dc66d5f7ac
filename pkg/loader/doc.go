// Package loader builds models from declarative YAML or JSON files.
//
// A model file lists models with their parents, meta options and fields:
//
//	models:
//	  - name: Person
//	    fields:
//	      - {name: name, type: string, required: true, max_length: 40}
//	      - {name: address, type: Address}
//	      - {name: phones, type: "[int]"}
//	  - name: Address
//	    fields:
//	      - {name: street, type: string}
//
// Field types are primitive names (any, int, float, decimal, string, bool,
// datetime), "[T]" for lists, "{T}" for maps, or the name of another model.
// Model references are resolved lazily, so models may appear in any order;
// parents named in extends are built first.
package loader
