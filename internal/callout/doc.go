// Package callout turns a traffic alert into the ordered list of spoken
// segments that announce it, for example "traffic, alpha, three o'clock,
// low".
//
// Identifiers can be replaced by short aliases. Aliases are assigned in
// first-seen order and are reused once more identifiers have been seen than
// there are alias segments; two aircraft may then share an alias.
package callout
