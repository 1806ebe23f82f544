// Package screenshot holds the domain types shared by the HTTP API and the
// browser driver: the capture request, the captured image, the Capturer
// contract, and the data URI formatting used in responses.
package screenshot
