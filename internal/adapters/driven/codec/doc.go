// Package codec encodes OSCAL documents and parses them back into the
// generic JSON-shaped tree the importer maps from.
//
// JSON and YAML are decoded directly. XML is walked token by token and
// rebuilt in the JSON shape: attributes become keys, repeated elements
// become plural arrays and markup-multiline elements are flattened to text.
package codec
