package mysql

// -----------------------------------------------------------------------------
// CATALOG READS
// -----------------------------------------------------------------------------

const getStayTypeSQL = `
SELECT id, hotel_id, code, name, nights, included_board, is_active
FROM stay_types
WHERE id = ?
`

const getRoomTypeSQL = `
SELECT id, hotel_id, code, name, base_occupancy, max_occupancy, extra_bed_slots,
       single_use_supplement, is_active
FROM room_types
WHERE id = ?
`

const listActiveRoomTypesSQL = `
SELECT id, hotel_id, code, name, base_occupancy, max_occupancy, extra_bed_slots,
       single_use_supplement, is_active
FROM room_types
WHERE is_active = 1
ORDER BY id
`

const getRatePlanSQL = `
SELECT id, hotel_id, code, name, currency, pricing_model, is_active
FROM rate_plans
WHERE id = ?
`

const getAgePolicySQL = `
SELECT infant_max_age, child_max_age, adult_min_age
FROM hotel_age_policies
WHERE hotel_id = ?
`

// Rules overlapping [from, to]; id order keeps resolution deterministic.
const listRateRulesSQL = `
SELECT id, rate_plan_id, stay_type_id, room_type_id, start_date, end_date,
       base_price, per_adult, per_child, per_infant, per_extra_bed,
       per_extra_person, single_use_supplement, included_occupancy
FROM rate_rules
WHERE rate_plan_id = ? AND end_date >= ? AND start_date <= ?
ORDER BY id
`

const listAllotmentsSQL = `
SELECT id, room_type_id, date, quantity, allocated, stop_sell,
       min_stay, max_stay, cta, ctd
FROM allotments
WHERE room_type_id = ? AND date BETWEEN ? AND ?
ORDER BY date
`

// -----------------------------------------------------------------------------
// INVENTORY WRITES
// -----------------------------------------------------------------------------

const upsertAllotmentSQL = `
INSERT INTO allotments
  (room_type_id, date, quantity, allocated, stop_sell, min_stay, max_stay, cta, ctd)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  quantity   = VALUES(quantity),
  stop_sell  = VALUES(stop_sell),
  min_stay   = VALUES(min_stay),
  max_stay   = VALUES(max_stay),
  cta        = VALUES(cta),
  ctd        = VALUES(ctd),
  updated_at = CURRENT_TIMESTAMP
`

// Atomic take: the WHERE clause is the compare-and-swap. Zero rows affected
// means either no allotment row (unconstrained date) or not enough units.
const reserveAllotmentSQL = `
UPDATE allotments
SET allocated = allocated + ?
WHERE room_type_id = ? AND date = ? AND stop_sell = 0 AND allocated + ? <= quantity
`

const allotmentExistsSQL = `
SELECT COUNT(*) FROM allotments WHERE room_type_id = ? AND date = ?
`

const releaseAllotmentSQL = `
UPDATE allotments
SET allocated = GREATEST(allocated - ?, 0)
WHERE room_type_id = ? AND date = ?
`

// -----------------------------------------------------------------------------
// BOOKINGS
// -----------------------------------------------------------------------------

const insertBookingSQL = `
INSERT INTO bookings
  (reference, hotel_id, stay_type_id, room_type_id, rate_plan_id,
   check_in, check_out, nights, adults, children, infants, extra_beds,
   status, total_amount, currency,
   rate_rule_snapshot, age_policy_snapshot, breakdown_snapshot, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const insertGuestsPrefix = `
INSERT INTO booking_guests (booking_id, name, birthdate, guest_category) VALUES `

const getBookingByRefSQL = `
SELECT id, reference, hotel_id, stay_type_id, room_type_id, rate_plan_id,
       check_in, check_out, nights, adults, children, infants, extra_beds,
       status, total_amount, currency,
       rate_rule_snapshot, age_policy_snapshot, breakdown_snapshot, created_at
FROM bookings
WHERE reference = ?
`

const listGuestsSQL = `
SELECT id, booking_id, name, birthdate, guest_category
FROM booking_guests
WHERE booking_id = ?
ORDER BY id
`

// Guarded transition: only moves the row if it is still in the expected
// status, so two concurrent transitions cannot both win.
const updateBookingStatusSQL = `
UPDATE bookings SET status = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND status = ?
`
