// Package prodner finds product mentions in web pages. It fetches pages,
// reduces them to visible text, and locates labeled spans in that text,
// either through a Recognizer for live inference or through deterministic
// search when building a labeled training corpus.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., http/, goquery/, sqlite/, gemini/).
package prodner
