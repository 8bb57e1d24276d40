// Package formats reads and writes Wavefront OBJ geometry.
//
// WriteOBJ and WriteOBJFile validate every face against the mesh before any
// output is produced; ParseOBJ and ParseOBJFile load the subset of OBJ that
// the writer emits (v, vt, vn and f directives).
package formats
