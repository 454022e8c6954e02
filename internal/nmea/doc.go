package nmea

// Package nmea turns a raw NMEA 0183 byte stream into validated records.
//
// It is deliberately transport-agnostic:
// - Framer splits arbitrary chunks into candidate lines
// - Parse checks the checksum and decodes the common navigational sentences
//   (GGA, RMC, GLL, VTG, ZDA, GSA, GSV); anything else becomes Unrecognized
// - Encode renders supported records back to wire form
