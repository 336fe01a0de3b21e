package repo

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"madhughor-backend/internal/domain"
	"madhughor-backend/internal/usecase"

	_ "github.com/lib/pq"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(dsn string) (*PostgresRepo, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	r := &PostgresRepo{db: db}
	if err := r.init(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *PostgresRepo) init() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			order_number TEXT UNIQUE NOT NULL,
			customer_name TEXT NOT NULL,
			phone TEXT NOT NULL,
			email TEXT,
			district_id TEXT,
			area TEXT,
			full_address TEXT NOT NULL,
			product_variation_id TEXT NOT NULL,
			quantity INT NOT NULL DEFAULT 1,
			unit_price NUMERIC NOT NULL,
			delivery_charge NUMERIC NOT NULL DEFAULT 0,
			total_amount NUMERIC NOT NULL,
			discount_amount NUMERIC NOT NULL DEFAULT 0,
			payment_method TEXT NOT NULL DEFAULT 'cod',
			status TEXT NOT NULL DEFAULT 'pending',
			ip_address TEXT,
			user_agent TEXT,
			referrer_url TEXT,
			visitor_session_id TEXT,
			confirmed_at TIMESTAMPTZ,
			processing_at TIMESTAMPTZ,
			shipped_at TIMESTAMPTZ,
			delivered_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS product_variations (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			name_bn TEXT NOT NULL DEFAULT '',
			size TEXT NOT NULL DEFAULT '',
			size_bn TEXT NOT NULL DEFAULT '',
			price NUMERIC NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT true,
			sort_order INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS abandoned_carts (
			id TEXT PRIMARY KEY,
			session_id TEXT,
			customer_name TEXT,
			phone TEXT,
			email TEXT,
			district_id TEXT,
			area TEXT,
			full_address TEXT,
			product_variation_id TEXT,
			quantity INT NOT NULL DEFAULT 1,
			user_agent TEXT,
			referrer_url TEXT,
			is_converted BOOLEAN NOT NULL DEFAULT false,
			contacted BOOLEAN NOT NULL DEFAULT false,
			contact_notes TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS visitor_analytics (
			id TEXT PRIMARY KEY,
			session_id TEXT,
			event_type TEXT NOT NULL,
			page_url TEXT,
			metadata JSONB NOT NULL DEFAULT '{}',
			user_agent TEXT,
			referrer_url TEXT,
			ip_address TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS rate_limits (
			id TEXT PRIMARY KEY,
			ip_address TEXT NOT NULL,
			action_type TEXT NOT NULL DEFAULT 'order_submission',
			attempted_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			is_blocked BOOLEAN NOT NULL DEFAULT false,
			blocked_until TIMESTAMPTZ
		);`,
		`CREATE INDEX IF NOT EXISTS rate_limits_ip_action_idx ON rate_limits (ip_address, action_type, attempted_at);`,
		`CREATE TABLE IF NOT EXISTS districts (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			name_bn TEXT NOT NULL DEFAULT '',
			delivery_charge NUMERIC NOT NULL DEFAULT 0,
			estimated_delivery_days INT NOT NULL DEFAULT 3,
			is_dhaka_metro BOOLEAN NOT NULL DEFAULT false,
			is_active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS settings (
			id TEXT PRIMARY KEY,
			key TEXT UNIQUE NOT NULL,
			value TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS admin_users (
			user_id TEXT PRIMARY KEY,
			subject TEXT UNIQUE NOT NULL,
			email TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS user_roles (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			role TEXT NOT NULL,
			UNIQUE (user_id, role)
		);`,
		`CREATE SEQUENCE IF NOT EXISTS order_number_seq;`,
		`CREATE OR REPLACE FUNCTION next_order_number() RETURNS text LANGUAGE sql AS
			$$ SELECT 'MH-' || to_char(now() AT TIME ZONE 'utc', 'YYYYMMDD') || '-' || lpad(nextval('order_number_seq')::text, 5, '0') $$;`,
		`CREATE OR REPLACE FUNCTION check_rate_limit(p_ip text, p_action text DEFAULT 'order_submission') RETURNS boolean LANGUAGE plpgsql AS $$
		DECLARE
			v_attempts int;
		BEGIN
			IF EXISTS (
				SELECT 1 FROM rate_limits
				WHERE ip_address = p_ip AND action_type = p_action
					AND is_blocked AND blocked_until > now()
			) THEN
				RETURN false;
			END IF;
			SELECT count(*) INTO v_attempts FROM rate_limits
			WHERE ip_address = p_ip AND action_type = p_action
				AND NOT is_blocked
				AND attempted_at > now() - interval '60 minutes';
			IF v_attempts >= 5 THEN
				INSERT INTO rate_limits (id, ip_address, action_type, is_blocked, blocked_until)
				VALUES (md5(random()::text || clock_timestamp()::text), p_ip, p_action, true, now() + interval '60 minutes');
				RETURN false;
			END IF;
			INSERT INTO rate_limits (id, ip_address, action_type)
			VALUES (md5(random()::text || clock_timestamp()::text), p_ip, p_action);
			RETURN true;
		END;
		$$;`,
	}
	for _, q := range stmts {
		if _, err := r.db.Exec(q); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Allow consults the store-side check_rate_limit procedure; the
// bucketing and blocking logic lives entirely in SQL.
func (r *PostgresRepo) Allow(ip, action string) (bool, error) {
	var allowed bool
	if err := r.db.QueryRow(`SELECT check_rate_limit($1, $2)`, ip, action).Scan(&allowed); err != nil {
		return false, err
	}
	return allowed, nil
}

func (r *PostgresRepo) InsertOrder(o *domain.Order) (string, error) {
	id := randomID()
	now := time.Now().UTC()
	err := r.db.QueryRow(`INSERT INTO orders
		(id, order_number, customer_name, phone, email, district_id, area, full_address,
		 product_variation_id, quantity, unit_price, delivery_charge, total_amount, discount_amount,
		 payment_method, status, ip_address, user_agent, referrer_url, visitor_session_id, created_at, updated_at)
		VALUES ($1, next_order_number(), $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $20)
		RETURNING order_number`,
		id, o.CustomerName, o.Phone, nullStr(o.Email), nullStr(o.DistrictID), nullStr(o.Area), o.FullAddress,
		o.ProductVariationID, o.Quantity, o.UnitPrice, o.DeliveryCharge, o.TotalAmount, o.DiscountAmount,
		o.PaymentMethod, string(o.Status), nullStr(o.IPAddress), nullStr(o.UserAgent), nullStr(o.ReferrerURL),
		nullStr(o.VisitorSessionID), now).Scan(&o.OrderNumber)
	if err != nil {
		return "", err
	}
	o.ID = id
	o.CreatedAt = now
	o.UpdatedAt = now
	return o.OrderNumber, nil
}

const orderColumns = `id, order_number, customer_name, phone, email, district_id, area, full_address,
	product_variation_id, quantity, unit_price, delivery_charge, total_amount, discount_amount,
	payment_method, status, ip_address, user_agent, referrer_url, visitor_session_id,
	confirmed_at, processing_at, shipped_at, delivered_at, created_at, updated_at`

func (r *PostgresRepo) GetOrder(id string) (*domain.Order, bool) {
	row := r.db.QueryRow(`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if err != nil {
		return nil, false
	}
	return o, true
}

func (r *PostgresRepo) ListOrders(page, pageSize int) ([]domain.Order, int) {
	rows, err := r.db.Query(`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0
	}
	defer rows.Close()
	out := make([]domain.Order, 0, pageSize)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			continue
		}
		out = append(out, *o)
	}
	var total int
	_ = r.db.QueryRow(`SELECT count(1) FROM orders`).Scan(&total)
	return out, total
}

func (r *PostgresRepo) UpdateOrderStatus(id string, status domain.OrderStatus, at time.Time) error {
	col := ""
	switch status {
	case domain.OrderConfirmed:
		col = "confirmed_at"
	case domain.OrderProcessing:
		col = "processing_at"
	case domain.OrderShipped:
		col = "shipped_at"
	case domain.OrderDelivered:
		col = "delivered_at"
	}
	q := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`
	if col != "" {
		q = fmt.Sprintf(`UPDATE orders SET status = $1, updated_at = $2, %s = $2 WHERE id = $3`, col)
	}
	res, err := r.db.Exec(q, string(status), at, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return usecase.ErrNotFound("order")
	}
	return nil
}

func (r *PostgresRepo) UpdatePaymentMethod(id string, method string) error {
	res, err := r.db.Exec(`UPDATE orders SET payment_method = $1, updated_at = now() WHERE id = $2`, method, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return usecase.ErrNotFound("order")
	}
	return nil
}

func (r *PostgresRepo) OrderStats() (*usecase.OrderStats, error) {
	stats := &usecase.OrderStats{ByStatus: map[string]int{}}
	err := r.db.QueryRow(`SELECT count(1),
		coalesce(sum(total_amount), 0), coalesce(sum(delivery_charge), 0), coalesce(sum(discount_amount), 0)
		FROM orders`).Scan(&stats.TotalOrders, &stats.Revenue, &stats.DeliveryRevenue, &stats.DiscountGiven)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(`SELECT status, count(1) FROM orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		stats.ByStatus[status] = n
	}
	return stats, nil
}

func (r *PostgresRepo) GetActiveVariation(id string) (*domain.ProductVariation, bool, error) {
	var pv domain.ProductVariation
	err := r.db.QueryRow(`SELECT id, name, name_bn, size, size_bn, price, is_active, sort_order, created_at
		FROM product_variations WHERE id = $1 AND is_active`, id).
		Scan(&pv.ID, &pv.Name, &pv.NameBn, &pv.Size, &pv.SizeBn, &pv.Price, &pv.IsActive, &pv.SortOrder, &pv.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &pv, true, nil
}

func (r *PostgresRepo) InsertCart(c *domain.AbandonedCart) (string, error) {
	id := randomID()
	now := time.Now().UTC()
	_, err := r.db.Exec(`INSERT INTO abandoned_carts
		(id, session_id, customer_name, phone, email, district_id, area, full_address,
		 product_variation_id, quantity, user_agent, referrer_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)`,
		id, nullStr(c.SessionID), nullStr(c.CustomerName), nullStr(c.Phone), nullStr(c.Email),
		nullStr(c.DistrictID), nullStr(c.Area), nullStr(c.FullAddress),
		nullStr(c.ProductVariationID), c.Quantity, nullStr(c.UserAgent), nullStr(c.ReferrerURL), now)
	if err != nil {
		return "", err
	}
	c.ID = id
	return id, nil
}

func (r *PostgresRepo) UpdateCart(id string, c *domain.AbandonedCart) error {
	res, err := r.db.Exec(`UPDATE abandoned_carts SET
		session_id = $1, customer_name = $2, phone = $3, email = $4, district_id = $5, area = $6,
		full_address = $7, product_variation_id = $8, quantity = $9, user_agent = $10,
		referrer_url = $11, updated_at = now()
		WHERE id = $12`,
		nullStr(c.SessionID), nullStr(c.CustomerName), nullStr(c.Phone), nullStr(c.Email),
		nullStr(c.DistrictID), nullStr(c.Area), nullStr(c.FullAddress),
		nullStr(c.ProductVariationID), c.Quantity, nullStr(c.UserAgent), nullStr(c.ReferrerURL), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return usecase.ErrNotFound("cart")
	}
	return nil
}

func (r *PostgresRepo) MarkConverted(id string) error {
	res, err := r.db.Exec(`UPDATE abandoned_carts SET is_converted = true, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return usecase.ErrNotFound("cart")
	}
	return nil
}

func (r *PostgresRepo) ListUnconverted(page, pageSize int) ([]domain.AbandonedCart, int, error) {
	rows, err := r.db.Query(`SELECT id, session_id, customer_name, phone, email, district_id, area,
		full_address, product_variation_id, quantity, is_converted, contacted, contact_notes, created_at, updated_at
		FROM abandoned_carts WHERE NOT is_converted
		ORDER BY updated_at DESC LIMIT $1 OFFSET $2`, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []domain.AbandonedCart
	for rows.Next() {
		var c domain.AbandonedCart
		var sessionID, name, phone, email, districtID, area, address, pvID, notes sql.NullString
		if err := rows.Scan(&c.ID, &sessionID, &name, &phone, &email, &districtID, &area,
			&address, &pvID, &c.Quantity, &c.IsConverted, &c.Contacted, &notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		c.SessionID = sessionID.String
		c.CustomerName = name.String
		c.Phone = phone.String
		c.Email = email.String
		c.DistrictID = districtID.String
		c.Area = area.String
		c.FullAddress = address.String
		c.ProductVariationID = pvID.String
		c.ContactNotes = notes.String
		out = append(out, c)
	}
	var total int
	if err := r.db.QueryRow(`SELECT count(1) FROM abandoned_carts WHERE NOT is_converted`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PostgresRepo) SetContacted(id, notes string) error {
	res, err := r.db.Exec(`UPDATE abandoned_carts SET contacted = true, contact_notes = $1, updated_at = now() WHERE id = $2`,
		notes, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return usecase.ErrNotFound("cart")
	}
	return nil
}

func (r *PostgresRepo) InsertEvent(e *domain.VisitorEvent) error {
	metadata, _ := json.Marshal(e.Metadata)
	_, err := r.db.Exec(`INSERT INTO visitor_analytics
		(id, session_id, event_type, page_url, metadata, user_agent, referrer_url, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		randomID(), nullStr(e.SessionID), e.EventType, nullStr(e.PageURL), string(metadata),
		nullStr(e.UserAgent), nullStr(e.ReferrerURL), nullStr(e.IPAddress))
	return err
}

func (r *PostgresRepo) ListActiveDistricts() ([]domain.District, error) {
	rows, err := r.db.Query(`SELECT id, name, name_bn, delivery_charge, estimated_delivery_days, is_dhaka_metro, is_active
		FROM districts WHERE is_active ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.District
	for rows.Next() {
		var d domain.District
		if err := rows.Scan(&d.ID, &d.Name, &d.NameBn, &d.DeliveryCharge, &d.EstimatedDeliveryDays,
			&d.IsDhakaMetro, &d.IsActive); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *PostgresRepo) GetSetting(key string) (string, bool) {
	var v string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = $1`, key).Scan(&v)
	if err != nil {
		return "", false
	}
	return v, true
}

func (r *PostgresRepo) PutSetting(key, value string) error {
	_, err := r.db.Exec(`INSERT INTO settings (id, key, value) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = $3, updated_at = now()`,
		randomID(), key, value)
	return err
}

func (r *PostgresRepo) GetUserBySubject(subject string) (*domain.AdminUser, bool) {
	var u domain.AdminUser
	var email sql.NullString
	var role string
	err := r.db.QueryRow(`SELECT u.user_id, u.subject, u.email,
		coalesce((SELECT role FROM user_roles WHERE user_id = u.user_id ORDER BY role = 'admin' DESC LIMIT 1), ''),
		u.created_at, u.updated_at
		FROM admin_users u WHERE u.subject = $1`, subject).
		Scan(&u.UserID, &u.Subject, &email, &role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, false
	}
	u.Email = email.String
	u.Role = domain.Role(role)
	return &u, true
}

func (r *PostgresRepo) HasRole(userID string, role domain.Role) bool {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1 AND role = $2)`,
		userID, string(role)).Scan(&exists)
	return err == nil && exists
}

func scanOrder(row interface{ Scan(...any) error }) (*domain.Order, error) {
	var o domain.Order
	var email, districtID, area, ip, ua, ref, session sql.NullString
	var confirmedAt, processingAt, shippedAt, deliveredAt sql.NullTime
	err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerName, &o.Phone, &email, &districtID, &area, &o.FullAddress,
		&o.ProductVariationID, &o.Quantity, &o.UnitPrice, &o.DeliveryCharge, &o.TotalAmount, &o.DiscountAmount,
		&o.PaymentMethod, (*string)(&o.Status), &ip, &ua, &ref, &session,
		&confirmedAt, &processingAt, &shippedAt, &deliveredAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Email = email.String
	o.DistrictID = districtID.String
	o.Area = area.String
	o.IPAddress = ip.String
	o.UserAgent = ua.String
	o.ReferrerURL = ref.String
	o.VisitorSessionID = session.String
	o.ConfirmedAt = nullTimePtr(confirmedAt)
	o.ProcessingAt = nullTimePtr(processingAt)
	o.ShippedAt = nullTimePtr(shippedAt)
	o.DeliveredAt = nullTimePtr(deliveredAt)
	return &o, nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
