package mysql

const userColumns = `id, name, email, password_hash, created_at`

const selectUserByIDSQL = `
SELECT ` + userColumns + `
FROM users
WHERE id = ?
`

const selectUserByEmailSQL = `
SELECT ` + userColumns + `
FROM users
WHERE email = ?
`

const insertUserSQL = `
INSERT INTO users (name, email, password_hash)
VALUES (?, ?, ?)
`

const propertyColumns = `id, owner_id, title, description, thumbnail_url, cover_url,
  cost_per_night_cents, parking_spaces, bathrooms, bedrooms,
  country, street, city, province, postal_code, active`

const selectPropertyByIDSQL = `
SELECT ` + propertyColumns + `
FROM properties
WHERE id = ?
`

const insertPropertySQL = `
INSERT INTO properties
  (owner_id, title, description, thumbnail_url, cover_url,
   cost_per_night_cents, parking_spaces, bathrooms, bedrooms,
   country, street, city, province, postal_code, active)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// Imported listings keep the partner's listing id, so re-imports update
// in place instead of duplicating rows.
const upsertListingSQL = `
INSERT INTO properties
  (id, owner_id, title, description, thumbnail_url, cover_url,
   cost_per_night_cents, parking_spaces, bathrooms, bedrooms,
   country, street, city, province, postal_code, active)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  owner_id             = VALUES(owner_id),
  title                = VALUES(title),
  description          = VALUES(description),
  thumbnail_url        = VALUES(thumbnail_url),
  cover_url            = VALUES(cover_url),
  cost_per_night_cents = VALUES(cost_per_night_cents),
  parking_spaces       = VALUES(parking_spaces),
  bathrooms            = VALUES(bathrooms),
  bedrooms             = VALUES(bedrooms),
  country              = VALUES(country),
  street               = VALUES(street),
  city                 = VALUES(city),
  province             = VALUES(province),
  postal_code          = VALUES(postal_code),
  active               = VALUES(active),
  updated_at           = CURRENT_TIMESTAMP
`

const insertImportMissSQL = `
INSERT INTO import_misses (listing_id, http_status, reason)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE seen_at = CURRENT_TIMESTAMP
`

const insertReservationSQL = `
INSERT INTO reservations (property_id, guest_id, start_date, end_date)
VALUES (?, ?, ?, ?)
`

const selectReservationByIDSQL = `
SELECT id, property_id, guest_id, start_date, end_date
FROM reservations
WHERE id = ?
`

const insertReviewSQL = `
INSERT INTO property_reviews (reservation_id, property_id, guest_id, rating, message)
VALUES (?, ?, ?, ?, ?)
`

const selectReviewByIDSQL = `
SELECT id, reservation_id, property_id, guest_id, rating, message
FROM property_reviews
WHERE id = ?
`

// A guest's reservations, each joined with its property and the
// property's average rating, soonest stay first.
const guestReservationsSQL = `
SELECT
  reservations.id,
  reservations.start_date,
  reservations.end_date,
  properties.id,
  properties.owner_id,
  properties.title,
  properties.description,
  properties.thumbnail_url,
  properties.cover_url,
  properties.cost_per_night_cents,
  properties.parking_spaces,
  properties.bathrooms,
  properties.bedrooms,
  properties.country,
  properties.street,
  properties.city,
  properties.province,
  properties.postal_code,
  properties.active,
  avg(property_reviews.rating) AS average_rating
FROM reservations
JOIN properties ON reservations.property_id = properties.id
JOIN property_reviews ON properties.id = property_reviews.property_id
WHERE reservations.guest_id = ?
GROUP BY properties.id, reservations.id
ORDER BY reservations.start_date
LIMIT ?
`
