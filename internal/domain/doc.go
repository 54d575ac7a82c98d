// Package domain contains the core entities of the to-do application and the
// validation rules that must hold before any of them reach persistence.
package domain
