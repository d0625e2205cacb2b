// Package validation provides struct-tag and fluent field validation used by
// plugin backends to check option maps before activation.
package validation
