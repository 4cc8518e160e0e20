// SPDX-License-Identifier: MPL-2.0

// Package constraint validates option fields and operation arguments against
// CUE constraint expressions declared in command descriptors.
//
// A constraint is any CUE expression that a value must unify with, such as
// ">=1", "=~\"^[a-z]+$\"" or "\"json\" | \"text\"". Absent arguments and nil
// pointer fields are checked as null, so "null | >=1" makes a value optional.
package constraint
