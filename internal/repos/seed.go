package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"equiptrack/internal/domain"
	applog "equiptrack/internal/log"
)

// SeedPassword is the password of every seeded account.
const SeedPassword = "Passw0rd!"

// seedUsers creates the baseline accounts on an empty database.
func seedUsers(db *sqlx.DB) error {
	type u struct {
		Email, Name, Role, Hash string
		Active                  bool
	}
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM users`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	h, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	users := []u{
		{"admin@equiptrack.test", "Admin", domain.RoleAdmin, string(h), true},
		{"alice@equiptrack.test", "Alice Martin", domain.RoleUser, string(h), true},
		{"bob@equiptrack.test", "Bob Durand", domain.RoleUser, string(h), false},
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(email,full_name,password_hash,role,is_active)
			SELECT ?,?,?,?,?
			WHERE NOT EXISTS (SELECT 1 FROM users WHERE LOWER(email)=LOWER(?))
		`, x.Email, x.Name, x.Hash, x.Role, x.Active, x.Email); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SeedDemo fills an empty catalogue with a few categories, equipment items
// and stores. It does nothing once any category exists.
func SeedDemo(ctx context.Context, db *sqlx.DB) error {
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM category`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	applog.L().Info("seed", zap.String("what", "demo categories/equipment/stores"))

	opened := time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC)
	return InTx(ctx, db, func(tx *sqlx.Tx) error {
		cats := NewCategoryRepo(tx)
		ids := map[string]int64{}
		for _, name := range []string{"Point of sale", "Kitchen", "Furniture", "Signage"} {
			c := domain.Category{Name: name}
			if err := cats.Insert(ctx, &c); err != nil {
				return err
			}
			ids[name] = c.ID
		}

		eq := NewEquipmentRepo(tx)
		for _, e := range []domain.Equipment{
			{Name: "Cash register", Reference: "POS-REG-01", CategoryID: ids["Point of sale"], State: domain.StateNew, StockQuantity: 12},
			{Name: "Receipt printer", Reference: "POS-PRN-02", CategoryID: ids["Point of sale"], State: domain.StateNew, StockQuantity: 4},
			{Name: "Fryer 2x10L", Reference: "KIT-FRY-10", CategoryID: ids["Kitchen"], State: domain.StateUsed, StockQuantity: 3},
			{Name: "Bar stool", Reference: "FUR-STL-01", CategoryID: ids["Furniture"], State: domain.StateNew, StockQuantity: 40},
			{Name: "Menu board", Reference: "SGN-MNU-01", CategoryID: ids["Signage"], State: domain.StateDamaged, StockQuantity: 0},
		} {
			e := e
			if err := eq.Insert(ctx, &e); err != nil {
				return err
			}
		}

		st := NewStoreRepo(tx)
		for _, s := range []domain.Store{
			{Name: "Lyon Part-Dieu", Address: "17 rue du Docteur Bouchut, 69003 Lyon", Manager: "Claire Petit",
				Region: "SR-RA", CodeFR: "FR-0412", Status: "open", ProjectType: "creation", OpenedOn: &opened},
			{Name: "Lille Europe", Address: "Avenue Le Corbusier, 59800 Lille", Manager: "Marc Leroy",
				Region: "SR-NO", CodeFR: "FR-0233", Status: "open", ProjectType: "reconstruction"},
			{Name: "Nantes Atlantis", Address: "Place Jean Bart, 44800 Saint-Herblain",
				Region: "SR-OU", Status: "closed", ProjectType: "creation"},
		} {
			s := s
			if err := st.Insert(ctx, &s); err != nil {
				return err
			}
		}
		return nil
	})
}
