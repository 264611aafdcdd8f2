package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

func (c *LlmConfiguration) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

func (l *LlmCallLog) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ID)
	return nil
}

func (j *SeoJob) BeforeCreate(*gorm.DB) error {
	ensureID(&j.ID)
	return nil
}

func (d *SeoDraft) BeforeCreate(*gorm.DB) error {
	ensureID(&d.ID)
	return nil
}

func (s *MagentoStore) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

