// Package validate turns raw content service output into validated candidate
// node descriptors or round reports. Responses are frequently imperfect, so a
// recovery ladder is applied before parsing: use the text as-is, strip
// markdown fences and surrounding chatter, then extract the first balanced
// JSON block. Individual malformed candidates are dropped or coerced with a
// warning; they never invalidate the rest of the batch.
package validate
