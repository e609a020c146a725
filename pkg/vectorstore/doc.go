// Package vectorstore is an in-memory semantic index of course passages.
//
// Documents and their embeddings are kept in two parallel slices that always
// have equal length; index i of one belongs to index i of the other. Every
// vector in a store shares the dimensionality of the first one inserted.
// Search is a linear scan with cosine similarity.
package vectorstore
