// Package android implements the platform ports for Android endpoints. Every
// operation is a shell command run through the privileged executor, so the
// agent needs no Android framework bindings.
package android
