// Package workspace manages the build output directory and short-lived
// staging directories.
//
// Layout fixes where each task writes: classes/ for compiled output, libs/
// for the produced jars, reports/ for tool reports and tmp/ for scratch data.
// Manager creates timestamped staging directories below tmp/ (for example
// jarbuilder-20251214-122336) that are removed after use.
package workspace
