// Package models holds the gorm entities of the CRM.
package models

// All lists every model in dependency order, for AutoMigrate and tests.
func All() []any {
	return []any{
		&User{}, &Organization{}, &Contact{}, &Lead{}, &Activity{}, &Product{}, &Quote{}, &Email{},
	}
}
