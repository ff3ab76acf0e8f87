// Package kernel provides the value objects shared by every aggregate of the
// replenishment domain: identifiers, geographic points and commodity quantities.
//
// All kernel values are immutable and must be created through their constructors;
// zero values fail Validate.
package kernel
