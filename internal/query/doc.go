// Package query turns HCL query files into compiled call sites. Each
// `call "function" "name"` block becomes one Call whose arguments are
// evaluated once, stored in slots in order of appearance, and bound to the
// function's declared inputs in canonical order.
package query
