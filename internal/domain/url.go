package domain

// InstagramURLPattern is the input constraint for submitted URLs, written the
// way an HTML pattern attribute expects it (implicitly anchored)
const InstagramURLPattern = `https?://(www\.)?instagram\.com/.*`
