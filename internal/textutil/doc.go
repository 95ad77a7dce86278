// Package textutil provides code-point aware slicing and filename sanitizing.
//
// Source novels and generated scripts are mostly CJK text, so every length
// and offset in the generation pipeline counts runes, never bytes. These
// helpers slice without splitting a multi-byte character.
package textutil
