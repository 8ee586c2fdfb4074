// Package maven implements the parts of the Maven repository protocol needed
// to publish a single artifact: layout paths, POM generation, checksum
// sidecars, maven-metadata.xml merging and authenticated HTTP PUT uploads.
package maven
