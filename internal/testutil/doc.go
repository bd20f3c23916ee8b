// Package testutil provides fixtures shared by the package tests: event
// log and event store writers and deterministic run ids.
package testutil
