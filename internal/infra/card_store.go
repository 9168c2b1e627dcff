package infra

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Ensure sqlcipher driver is registered.
	_ "github.com/mutecomm/go-sqlcipher/v4"

	"github.com/eliteGoblin/frictiond/internal/domain"
)

const cardDBName = "cards.db"

// EncryptedCardStore implements domain.CardSource using a SQLCipher
// encrypted SQLite database. Flashcards are personal content and are
// kept encrypted at rest.
type EncryptedCardStore struct {
	db     *sql.DB
	dbPath string
}

// NewEncryptedCardStore opens (or creates) the encrypted card database.
// The key is used as the SQLCipher passphrase via PRAGMA key.
func NewEncryptedCardStore(dataDir string, key []byte) (*EncryptedCardStore, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, cardDBName)
	keyHex := hex.EncodeToString(key)

	// Open with SQLCipher key as DSN parameter
	dsn := fmt.Sprintf("%s?_pragma_key=x'%s'&_pragma_cipher_page_size=4096", dbPath, keyHex)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open encrypted database: %w", err)
	}

	// Verify encryption works by running a query
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to encrypted database: %w", err)
	}

	store := &EncryptedCardStore{
		db:     db,
		dbPath: dbPath,
	}

	if err := store.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return store, nil
}

// createTables creates the schema if it doesn't exist.
func (s *EncryptedCardStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cards (
		id TEXT PRIMARY KEY,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		quiz_eligible INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// AddCard stores a new flashcard.
func (s *EncryptedCardStore) AddCard(card domain.Card) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO cards (id, question, answer, quiz_eligible, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		card.ID, card.Question, card.Answer, boolToInt(card.QuizEligible), time.Now().Unix(),
	)
	return err
}

// SetQuizEligible flags or unflags a card for the delay-quiz draw pool.
func (s *EncryptedCardStore) SetQuizEligible(id string, eligible bool) error {
	result, err := s.db.Exec(`UPDATE cards SET quiz_eligible = ? WHERE id = ?`,
		boolToInt(eligible), id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("card %s not found", id)
	}
	return nil
}

// QuizEligibleCards returns all cards flagged for the delay quiz.
func (s *EncryptedCardStore) QuizEligibleCards() ([]domain.Card, error) {
	return s.queryCards(`SELECT id, question, answer, quiz_eligible FROM cards
		WHERE quiz_eligible = 1 ORDER BY created_at`)
}

// AllCards returns every stored card.
func (s *EncryptedCardStore) AllCards() ([]domain.Card, error) {
	return s.queryCards(`SELECT id, question, answer, quiz_eligible FROM cards ORDER BY created_at`)
}

func (s *EncryptedCardStore) queryCards(query string) ([]domain.Card, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		var card domain.Card
		var eligible int
		if err := rows.Scan(&card.ID, &card.Question, &card.Answer, &eligible); err != nil {
			return nil, err
		}
		card.QuizEligible = eligible != 0
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

// Close releases the database connection.
func (s *EncryptedCardStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path (for tests and status output).
func (s *EncryptedCardStore) Path() string {
	return s.dbPath
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Ensure EncryptedCardStore implements domain.CardSource.
var _ domain.CardSource = (*EncryptedCardStore)(nil)
