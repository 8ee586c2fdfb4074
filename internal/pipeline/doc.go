// Package pipeline runs the build tasks of a project descriptor.
//
// Tasks form a fixed dependency graph:
//
//	compileJava -> jar, shadowJar, sourcesJar, checkstyleMain -> build -> publish
//
// A run executes the transitive dependencies of the requested targets in a
// deterministic topological order, sequentially, stopping at the first
// failure or when the context is canceled.
package pipeline
