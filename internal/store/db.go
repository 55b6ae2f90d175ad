package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database wraps the GORM DB handle and exposes repository helpers.
type Database struct {
	gorm *gorm.DB
	mu   sync.Mutex
}

// Open initializes the SQLite-backed database at the provided path.
func Open(path string, silent bool) (*Database, error) {
	cfg := &gorm.Config{}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&PolicyRule{}, &Assessment{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		logrus.WithError(err).Warn("enable WAL mode")
	}
	if err := db.Exec("PRAGMA synchronous=NORMAL").Error; err != nil {
		logrus.WithError(err).Warn("set synchronous pragma")
	}
	return &Database{gorm: db}, nil
}

// GORM exposes the raw gorm.DB handle.
func (d *Database) GORM() *gorm.DB {
	return d.gorm
}

// Close closes the underlying database connection.
func (d *Database) Close() error {
	if d == nil {
		return nil
	}
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ReplaceDocumentRules swaps in the rule set for one document inside a single
// transaction, so readers never observe a half-written batch and re-indexing
// a document name never duplicates its earlier rules.
func (d *Database) ReplaceDocumentRules(documentName string, rules []PolicyRule) error {
	if documentName == "" {
		return errors.New("document name is empty")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_name = ?", documentName).Delete(&PolicyRule{}).Error; err != nil {
			return fmt.Errorf("delete prior rules: %w", err)
		}
		if len(rules) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rules, 100).Error; err != nil {
			return fmt.Errorf("insert rules: %w", err)
		}
		return nil
	})
}

// AllRules returns every stored rule in insertion order.
func (d *Database) AllRules() ([]PolicyRule, error) {
	var rules []PolicyRule
	if err := d.gorm.Order("id asc").Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	return rules, nil
}

// RulesForDocument returns the stored rules for one document in insertion order.
func (d *Database) RulesForDocument(documentName string) ([]PolicyRule, error) {
	var rules []PolicyRule
	if err := d.gorm.Where("document_name = ?", documentName).Order("id asc").Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("load document rules: %w", err)
	}
	return rules, nil
}

// ClearRules removes every stored rule.
func (d *Database) ClearRules() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Where("1 = 1").Delete(&PolicyRule{}).Error
}

// SaveAssessment appends one assessment record.
func (d *Database) SaveAssessment(a *Assessment) error {
	if a == nil {
		return errors.New("assessment is nil")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Create(a).Error
}

// RecentAssessments returns the latest assessments, newest first.
func (d *Database) RecentAssessments(limit int) ([]Assessment, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []Assessment
	if err := d.gorm.Order("id desc").Limit(limit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("load assessments: %w", err)
	}
	return out, nil
}
