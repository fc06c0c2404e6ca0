// Package mesh defines the layered planar paper model: vertices addressed
// by id, faces carrying a stacking layer and a surface flag, and the ordered
// list of creases. A Mesh is immutable once built; every fold produces a new
// Mesh that shares untouched face data with its predecessor.
package mesh
