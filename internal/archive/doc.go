// Package archive writes jar files: the plain compiled archive, the shadow
// bundle that merges dependency jars into one, and the companion sources jar.
//
// All archives are reproducible. Entries are sorted, every parent directory
// gets an explicit entry, timestamps are fixed and META-INF/MANIFEST.MF is
// always the first file.
package archive
