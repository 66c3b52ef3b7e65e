// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Contact
// model, the durable record behind the contact verification flow.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/go-catalog-backend/internal/domain"
)

// CreateContact inserts a verified contact row. The ID is a randomly
// generated UUID (string) and CreatedAt is set to UTC. IsVerified is always
// true: this function is reachable only after a successful code check.
//
// On success, it returns the persisted Contact. On failure, it returns a DB error.
func CreateContact(ctx context.Context, db *gorm.DB, email, username, comment string) (*domain.Contact, error) {
	c := &domain.Contact{
		ID:         uuid.NewString(),
		Gmail:      email,
		Username:   username,
		Comment:    comment,
		IsVerified: true,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// CountContacts returns the total number of stored contacts. Used by tests
// and diagnostics to assert exactly-once commit semantics.
func CountContacts(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Contact{}).Count(&total).Error
	return total, err
}
